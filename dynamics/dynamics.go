package dynamics

import (
	"context"
	"fmt"
	"sort"

	"github.com/katalvlaran/trafficsim/agent"
	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/graph"
	"github.com/katalvlaran/trafficsim/itinerary"
	"github.com/katalvlaran/trafficsim/measurement"
)

// turnTally counts agents crossing a street's downstream node this tick,
// bucketed by direction {Right, Straight, Left, UTurn} (spec.md §4.5,
// glossary "Turn tally consistency").
type turnTally [4]int

// RoadDynamics is the simulation driver: it exclusively owns every Agent
// and Itinerary, while the Graph it drives is read-only once built
// (spec.md §3 "Ownership"). A single seeded RNG backs every stochastic
// choice made across a run.
type RoadDynamics struct {
	graph *graph.Graph
	rng   *core.RNG
	opts  Options

	time core.Time

	agents      map[core.AgentID]*agent.Agent
	nextAgentID core.AgentID

	itineraries map[core.NodeID]*itinerary.Itinerary // keyed by destination
	itinByID    map[core.ItinID]*itinerary.Itinerary
	destSet     []core.NodeID // last set_destination_nodes argument, for idempotence
	nextItinID  core.ItinID

	// tails accumulates n_exiting_agents samples between optimizer runs
	// (spec.md §4.5 "Traffic-light optimizer" step 2).
	tails map[core.StreetID]int
	// turns counts this tick's turn-bucket crossings per street, reset at
	// the start of every Evolve call.
	turns map[core.StreetID]*turnTally

	lastOptTime core.Time

	travelTime measurement.TravelTimeReducer

	injectedCount uint64
	arrivedCount  uint64
	resetCount    uint64
}

// New constructs a RoadDynamics over g, which must already be built
// (graph.Graph.BuildAdjacency). Options are clamped and validated.
func New(g *graph.Graph, opts ...Option) (*RoadDynamics, error) {
	if !g.IsBuilt() {
		return nil, fmt.Errorf("%w: graph must be built before New", ErrInvalidArgument)
	}

	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateOptions(&cfg); err != nil {
		return nil, err
	}

	return &RoadDynamics{
		graph:       g,
		rng:         core.NewRNG(cfg.Seed),
		opts:        cfg,
		agents:      make(map[core.AgentID]*agent.Agent),
		itineraries: make(map[core.NodeID]*itinerary.Itinerary),
		itinByID:    make(map[core.ItinID]*itinerary.Itinerary),
		tails:       make(map[core.StreetID]int),
		turns:       make(map[core.StreetID]*turnTally),
	}, nil
}

func validateOptions(cfg *Options) error {
	clamp := func(v *float64) {
		if *v < 0 {
			*v = 0
		}
		if *v > 1 {
			*v = 1
		}
	}
	clamp(&cfg.ErrorProbability)
	clamp(&cfg.PassageProbability)
	clamp(&cfg.MinSpeedRatio)
	clamp(&cfg.OptimizerThreshold)
	clamp(&cfg.OptimizerDensityTolerance)
	if cfg.SpeedFluctuationStd < 0 {
		return fmt.Errorf("%w: speed fluctuation std must be >= 0", ErrInvalidArgument)
	}
	if cfg.MaxFlowPercentage <= 0 || cfg.MaxFlowPercentage > 1 {
		return fmt.Errorf("%w: max flow percentage must be in (0,1]", ErrInvalidArgument)
	}
	if cfg.DataUpdatePeriod == 0 {
		return fmt.Errorf("%w: data update period must be > 0", ErrInvalidArgument)
	}

	return nil
}

// Time returns the current tick count.
func (d *RoadDynamics) Time() core.Time { return d.time }

// AliveCount returns the number of agents currently alive (injected, not
// yet destroyed).
func (d *RoadDynamics) AliveCount() int { return len(d.agents) }

// InjectedCount, ArrivedCount and ResetCount expose the running counters
// behind the conservation invariant
// #alive + #arrived - #reset == #injected (spec.md §8).
func (d *RoadDynamics) InjectedCount() uint64 { return d.injectedCount }
func (d *RoadDynamics) ArrivedCount() uint64  { return d.arrivedCount }
func (d *RoadDynamics) ResetCount() uint64    { return d.resetCount }

// TravelTimeStats returns the running mean/stddev of completed agents'
// travel times.
func (d *RoadDynamics) TravelTimeStats() measurement.Stats { return d.travelTime.Stats() }

// SetDestinationNodes installs one identity itinerary per node in dests,
// replacing whatever set was previously installed. Calling it twice with
// the same set (in any order) is a no-op the second time (spec.md §8
// round-trip law).
func (d *RoadDynamics) SetDestinationNodes(ctx context.Context, dests []core.NodeID) error {
	sorted := append([]core.NodeID(nil), dests...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if sameSet(sorted, d.destSet) {
		return nil
	}

	reqs := make([]itinerary.Request, len(sorted))
	for i, dst := range sorted {
		reqs[i] = itinerary.Request{ID: d.nextItinID + core.ItinID(i), Destination: dst}
	}

	its, err := itinerary.UpdatePaths(ctx, d.graph, reqs)
	if err != nil {
		return err
	}

	next := make(map[core.NodeID]*itinerary.Itinerary, len(its))
	nextByID := make(map[core.ItinID]*itinerary.Itinerary, len(its))
	for _, it := range its {
		next[it.Destination()] = it
		nextByID[it.ID()] = it
	}
	d.itineraries = next
	d.itinByID = nextByID
	d.destSet = sorted
	d.nextItinID += core.ItinID(len(sorted))

	return nil
}

func sameSet(a, b []core.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// Inject creates a new agent waiting at srcNode. destination selects the
// itinerary to follow (it must have been installed by
// SetDestinationNodes); a nil destination creates a random agent, which
// requires at least one itinerary to exist (spec.md §8 boundary: "a random
// agent with no itineraries available must fail injection").
func (d *RoadDynamics) Inject(srcNode core.NodeID, destination *core.NodeID, reinsert bool) (core.AgentID, error) {
	if _, ok := d.graph.Node(srcNode); !ok {
		return 0, fmt.Errorf("%w: unknown source node %d", ErrInvalidArgument, srcNode)
	}

	var itinID *core.ItinID
	if destination != nil {
		it, ok := d.itineraries[*destination]
		if !ok {
			return 0, fmt.Errorf("%w: no itinerary installed for destination %d", ErrInvalidArgument, *destination)
		}
		id := it.ID()
		itinID = &id
	} else if len(d.itineraries) == 0 {
		return 0, fmt.Errorf("%w: random agent injected with no itineraries available", ErrInvalidArgument)
	}

	if d.AliveCount() >= d.graph.MaxCapacity() {
		return 0, fmt.Errorf("%w: graph at maximum capacity %d", ErrOverflow, d.graph.MaxCapacity())
	}

	id := d.nextAgentID
	d.nextAgentID++
	a := agent.New(id, srcNode, reinsert)
	if itinID != nil {
		a.WithItinerary(*itinID)
	}
	d.agents[id] = a
	d.injectedCount++

	return id, nil
}

// AgentSnapshot returns a copy of an agent's current state, for inspection
// by demos and tests; ok is false if id is unknown or the agent was
// removed on arrival (a reinsert agent stays tracked after it arrives).
func (d *RoadDynamics) AgentSnapshot(id core.AgentID) (agent.Agent, bool) {
	a, ok := d.agents[id]
	if !ok {
		return agent.Agent{}, false
	}

	return *a, true
}

// itineraryFor returns the Itinerary an agent is following, or nil for a
// random agent.
func (d *RoadDynamics) itineraryFor(a *agent.Agent) *itinerary.Itinerary {
	if a.IsRandom() {
		return nil
	}

	return d.itinByID[*a.ItinID]
}

// scaledTransport applies MaxFlowPercentage to a transport capacity,
// rounding down but never below 1 (spec.md §6 "max_flow_percentage caps
// per-tick street throughput").
func scaledTransport(cap int, pct float64) int {
	scaled := int(float64(cap) * pct)
	if scaled < 1 {
		scaled = 1
	}

	return scaled
}

func (d *RoadDynamics) tally(streetID core.StreetID, dir core.Direction) {
	t, ok := d.turns[streetID]
	if !ok {
		t = &turnTally{}
		d.turns[streetID] = t
	}
	switch dir {
	case core.Right:
		t[0]++
	case core.Straight:
		t[1]++
	case core.Left:
		t[2]++
	case core.UTurn:
		t[3]++
	}
}
