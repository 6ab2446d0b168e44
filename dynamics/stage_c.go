package dynamics

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/trafficsim/agent"
	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/node"
)

// stageC runs the per-agent update (spec.md §4.5 Stage C), iterating
// agents in ascending id order for deterministic replay.
func (d *RoadDynamics) stageC() error {
	ids := make([]core.AgentID, 0, len(d.agents))
	for id := range d.agents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := d.stageCAgent(d.agents[id]); err != nil {
			return err
		}
	}

	return nil
}

func (d *RoadDynamics) stageCAgent(ag *agent.Agent) error {
	switch {
	case ag.Delay > 1:
		ag.Distance += ag.Speed
		ag.Delay--
	case ag.Delay == 1:
		if err := d.commitLaneAssignment(ag); err != nil {
			return err
		}
	default:
		if _, onStreet := ag.OnStreet(); onStreet {
			ag.Speed = 0
		} else if _, hasPending := ag.PendingNext(); !hasPending {
			if err := d.injectFromSource(ag); err != nil {
				return err
			}
		}
	}
	ag.Time++

	return nil
}

// commitLaneAssignment runs when an agent's delay counts down to its last
// tick on the current street: it takes the final partial step, then
// chooses the next street and lane and enqueues onto the current street's
// exit queue, to be picked up by Stage A on a later tick (spec.md §4.5
// Stage C, "commit a lane assignment").
func (d *RoadDynamics) commitLaneAssignment(ag *agent.Agent) error {
	streetID, onStreet := ag.OnStreet()
	if !onStreet {
		return fmt.Errorf("%w: agent %d has delay=1 but is not on a street", ErrProgrammingError, ag.ID)
	}
	s, ok := d.graph.Street(streetID)
	if !ok {
		return fmt.Errorf("%w: unknown street %d", ErrInvalidArgument, streetID)
	}

	rem := math.Mod(s.Length(), ag.Speed)
	if rem != 0 {
		ag.Distance += rem
	} else {
		ag.Distance += ag.Speed
	}
	ag.Delay = 0

	curNode := s.Dst()
	refBearing := s.Bearing()

	// An agent reaching its itinerary's destination has no next street to
	// choose; Stage A detects the arrival once it reaches the front of this
	// exit queue, so it is simply enqueued without a pending-next memo.
	if it := d.itineraryFor(ag); it != nil && it.Destination() == curNode {
		const arrivalLane = 0
		if err := s.Enqueue(ag.ID, arrivalLane); err != nil {
			return fmt.Errorf("%w: %v", ErrProgrammingError, err)
		}
		ag.SetLane(arrivalLane)

		return nil
	}

	nextID, err := d.chooseNextStreet(ag, curNode, &refBearing)
	if err != nil {
		return err
	}
	nextStreet, ok := d.graph.Street(nextID)
	if !ok {
		return fmt.Errorf("%w: unknown street %d", ErrInvalidArgument, nextID)
	}

	delta := core.WrapAngle(nextStreet.Bearing() - refBearing)
	lane := chooseLane(core.DirectionFromDelta(delta), s.Lanes(), d.rng)

	ag.SetPendingNext(nextID)
	if err := s.Enqueue(ag.ID, lane); err != nil {
		return fmt.Errorf("%w: %v", ErrProgrammingError, err)
	}
	ag.SetLane(lane)

	return nil
}

// injectFromSource admits a waiting, not-yet-entered agent onto its source
// node (turn key 0, no reference bearing to reject U-turns against) once a
// next street has been chosen and has room; it otherwise stays in limbo and
// is retried on a later tick (spec.md §4.5 Stage C, "source node").
func (d *RoadDynamics) injectFromSource(ag *agent.Agent) error {
	n, ok := d.graph.Node(ag.SourceNode)
	if !ok {
		return fmt.Errorf("%w: unknown source node %d", ErrInvalidArgument, ag.SourceNode)
	}
	if n.IsFull() {
		return nil
	}

	nextID, err := d.chooseNextStreet(ag, ag.SourceNode, nil)
	if err != nil {
		return err
	}
	nextStreet, ok := d.graph.Street(nextID)
	if !ok {
		return fmt.Errorf("%w: unknown street %d", ErrInvalidArgument, nextID)
	}
	if nextStreet.IsFull() {
		return nil
	}

	switch typed := n.(type) {
	case *node.Roundabout:
		if err := typed.Enqueue(ag.ID); err != nil {
			return fmt.Errorf("%w: %v", ErrProgrammingError, err)
		}
	default:
		il, ok := n.(intersectionLike)
		if !ok {
			return fmt.Errorf("%w: node %d is neither Intersection-like nor Roundabout", ErrProgrammingError, ag.SourceNode)
		}
		if err := il.AddAgent(0, ag.ID); err != nil {
			return fmt.Errorf("%w: %v", ErrProgrammingError, err)
		}
	}
	ag.SetPendingNext(nextID)

	return nil
}

// chooseLane assigns an exit-queue lane from the turn direction: rightmost
// lane for Right, leftmost for Left/UTurn, uniform for Straight (spec.md
// §4.5 Stage C, "lane assignment").
func chooseLane(dir core.Direction, lanes int, rng *core.RNG) int {
	switch dir {
	case core.Right:
		return 0
	case core.Left, core.UTurn:
		return lanes - 1
	default:
		if lanes <= 1 {
			return 0
		}

		return rng.IntN(lanes)
	}
}
