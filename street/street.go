package street

import (
	"fmt"

	"github.com/katalvlaran/trafficsim/core"
)

// DefaultMaxSpeed is the free-flow speed (m/s) a Street uses when no
// WithMaxSpeed option overrides it: 13.8889 m/s ≈ 50 km/h.
const DefaultMaxSpeed = 13.8889

// Street is a directed edge with length, free-flow speed, per-lane
// capacity, a waiting set and one FIFO exit queue per lane (spec.md §4.2).
// A Street with spire=true additionally counts ingress/egress events
// (SpireStreet in spec.md's terms); see doc.go for the tagged-kind
// rationale.
type Street struct {
	id  core.StreetID
	src core.NodeID
	dst core.NodeID

	length            float64
	maxSpeed          float64
	laneCapacity      int
	transportCapacity int
	lanes             int
	bearing           float64

	waiting map[core.AgentID]struct{}
	queues  [][]core.AgentID // one FIFO per lane

	spire   bool
	inCount uint64
	outCount uint64
}

// Option configures a Street at construction time.
type Option func(*Street)

// WithMaxSpeed overrides the free-flow speed (m/s). Must be > 0.
func WithMaxSpeed(v float64) Option { return func(s *Street) { s.maxSpeed = v } }

// WithLaneCapacity overrides the per-lane vehicle capacity. Must be >= 1.
func WithLaneCapacity(c int) Option { return func(s *Street) { s.laneCapacity = c } }

// WithTransportCapacity overrides the per-tick throughput cap. Must be >= 1.
func WithTransportCapacity(c int) Option { return func(s *Street) { s.transportCapacity = c } }

// WithLanes overrides the lane count L. Must be >= 1.
func WithLanes(n int) Option { return func(s *Street) { s.lanes = n } }

// WithBearing overrides the street's bearing angle (radians, wrapped to
// [0, 2π) by New).
func WithBearing(angle float64) Option { return func(s *Street) { s.bearing = angle } }

// Spire marks the street as a SpireStreet: it will track monotone
// ingress/egress counters.
func Spire() Option { return func(s *Street) { s.spire = true } }

// New constructs a Street. length must be > 0; defaults are
// DefaultMaxSpeed, lane capacity 1, transport capacity 1, lanes 1, bearing
// 0, non-spire. Options validate after application.
func New(id core.StreetID, src, dst core.NodeID, length float64, opts ...Option) (*Street, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: street length must be > 0, got %v", ErrInvalidArgument, length)
	}

	s := &Street{
		id:                id,
		src:               src,
		dst:               dst,
		length:            length,
		maxSpeed:          DefaultMaxSpeed,
		laneCapacity:      1,
		transportCapacity: 1,
		lanes:             1,
		waiting:           make(map[core.AgentID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxSpeed <= 0 {
		return nil, fmt.Errorf("%w: street max speed must be > 0, got %v", ErrInvalidArgument, s.maxSpeed)
	}
	if s.laneCapacity < 1 {
		return nil, fmt.Errorf("%w: street lane capacity must be >= 1, got %d", ErrInvalidArgument, s.laneCapacity)
	}
	if s.transportCapacity < 1 {
		return nil, fmt.Errorf("%w: street transport capacity must be >= 1, got %d", ErrInvalidArgument, s.transportCapacity)
	}
	if s.lanes < 1 {
		return nil, fmt.Errorf("%w: street lane count must be >= 1, got %d", ErrInvalidArgument, s.lanes)
	}
	s.bearing = normalizeBearing(s.bearing)
	s.queues = make([][]core.AgentID, s.lanes)

	return s, nil
}

func normalizeBearing(a float64) float64 {
	const twoPi = 2 * 3.141592653589793
	for a < 0 {
		a += twoPi
	}
	for a >= twoPi {
		a -= twoPi
	}

	return a
}

// ID returns the street's id.
func (s *Street) ID() core.StreetID { return s.id }

// SetID overwrites the street's id. It exists solely for
// Graph.BuildAdjacency's canonical src*N+dst renumbering (spec.md §3
// "Graph"); nothing else should call it once a street is registered.
func (s *Street) SetID(id core.StreetID) { s.id = id }

// Src returns the upstream node id.
func (s *Street) Src() core.NodeID { return s.src }

// Dst returns the downstream node id.
func (s *Street) Dst() core.NodeID { return s.dst }

// Length returns the street's length in meters.
func (s *Street) Length() float64 { return s.length }

// MaxSpeed returns the free-flow speed v_max in m/s.
func (s *Street) MaxSpeed() float64 { return s.maxSpeed }

// LaneCapacity returns the per-lane vehicle capacity C.
func (s *Street) LaneCapacity() int { return s.laneCapacity }

// Lanes returns the lane count L.
func (s *Street) Lanes() int { return s.lanes }

// TransportCapacity returns the per-tick throughput cap.
func (s *Street) TransportCapacity() int { return s.transportCapacity }

// Bearing returns the street's bearing angle in [0, 2π).
func (s *Street) Bearing() float64 { return s.bearing }

// SetBearing overwrites the street's bearing angle, normalizing it to
// [0, 2π). It exists for Graph.BuildAdjacency's coordinate-derived bearing
// recomputation (spec.md §3 "Graph").
func (s *Street) SetBearing(angle float64) { s.bearing = normalizeBearing(angle) }

// IsSpire reports whether this street tracks ingress/egress counters.
func (s *Street) IsSpire() bool { return s.spire }

// Capacity returns the street's total vehicle capacity, capacity × L.
func (s *Street) Capacity() int { return s.laneCapacity * s.lanes }

// NAgents returns the number of agents physically on the street: waiting
// plus all exit queues.
func (s *Street) NAgents() int {
	n := len(s.waiting)
	for _, q := range s.queues {
		n += len(q)
	}

	return n
}

// NExitingAgents returns the number of agents currently sitting in exit
// queues (the "tail", spec.md glossary).
func (s *Street) NExitingAgents() int {
	n := 0
	for _, q := range s.queues {
		n += len(q)
	}

	return n
}

// IsFull reports whether the street is at total capacity.
func (s *Street) IsFull() bool { return s.NAgents() >= s.Capacity() }

// Density returns the street's vehicle density. If normalized is true, the
// result is NAgents()/Capacity() in [0,1]; otherwise it is the raw
// vehicles-per-meter NAgents()/Length().
func (s *Street) Density(normalized bool) float64 {
	if normalized {
		cap := s.Capacity()
		if cap == 0 {
			return 0
		}

		return float64(s.NAgents()) / float64(cap)
	}

	return float64(s.NAgents()) / s.length
}

// DeltaAngle returns the signed angular difference between this street's
// bearing and ref, wrapped to (-π, π].
func (s *Street) DeltaAngle(ref float64) float64 {
	return core.WrapAngle(s.bearing - ref)
}

// AddAgent adds id to the waiting set. Fails with ErrAlreadyPresent if id
// is already waiting or queued on any lane of this street.
func (s *Street) AddAgent(id core.AgentID) error {
	if s.contains(id) {
		return fmt.Errorf("%w: agent %d", ErrAlreadyPresent, id)
	}
	s.waiting[id] = struct{}{}
	if s.spire {
		s.inCount++
	}

	return nil
}

// contains reports whether id is in the waiting set or any exit queue.
func (s *Street) contains(id core.AgentID) bool {
	if _, ok := s.waiting[id]; ok {
		return true
	}
	for _, q := range s.queues {
		for _, a := range q {
			if a == id {
				return true
			}
		}
	}

	return false
}

// Enqueue moves id from the waiting set into the exit queue of lane. Fails
// with ErrNotWaiting if id is not currently waiting, or ErrBadLane if lane
// is out of range.
func (s *Street) Enqueue(id core.AgentID, lane int) error {
	if lane < 0 || lane >= s.lanes {
		return fmt.Errorf("%w: lane=%d lanes=%d", ErrBadLane, lane, s.lanes)
	}
	if _, ok := s.waiting[id]; !ok {
		return fmt.Errorf("%w: agent %d", ErrNotWaiting, id)
	}
	delete(s.waiting, id)
	s.queues[lane] = append(s.queues[lane], id)

	return nil
}

// Dequeue pops the front agent from lane's exit queue. Returns ok=false if
// the queue is empty. On success, a spire street's out counter increments.
func (s *Street) Dequeue(lane int) (core.AgentID, bool, error) {
	if lane < 0 || lane >= s.lanes {
		return 0, false, fmt.Errorf("%w: lane=%d lanes=%d", ErrBadLane, lane, s.lanes)
	}
	q := s.queues[lane]
	if len(q) == 0 {
		return 0, false, nil
	}
	id := q[0]
	s.queues[lane] = q[1:]
	if s.spire {
		s.outCount++
	}

	return id, true, nil
}

// PeekFront returns (without removing) the front agent of lane's exit
// queue. Returns ok=false if the queue is empty.
func (s *Street) PeekFront(lane int) (core.AgentID, bool, error) {
	if lane < 0 || lane >= s.lanes {
		return 0, false, fmt.Errorf("%w: lane=%d lanes=%d", ErrBadLane, lane, s.lanes)
	}
	q := s.queues[lane]
	if len(q) == 0 {
		return 0, false, nil
	}

	return q[0], true, nil
}

// QueueLen returns the number of agents waiting in lane's exit queue.
func (s *Street) QueueLen(lane int) int {
	if lane < 0 || lane >= s.lanes {
		return 0
	}

	return len(s.queues[lane])
}

// WaitingIDs returns a snapshot slice of agent ids currently in the
// waiting set (order unspecified).
func (s *Street) WaitingIDs() []core.AgentID {
	out := make([]core.AgentID, 0, len(s.waiting))
	for id := range s.waiting {
		out = append(out, id)
	}

	return out
}

// SpireCounts returns the monotone ingress/egress counters. If reset is
// true, both counters are zeroed after being read. Non-spire streets
// always report (0, 0).
func (s *Street) SpireCounts(reset bool) (in, out uint64) {
	in, out = s.inCount, s.outCount
	if reset {
		s.inCount, s.outCount = 0, 0
	}

	return in, out
}
