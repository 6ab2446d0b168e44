package agent

import "github.com/katalvlaran/trafficsim/core"

// Agent is a simulated vehicle (spec.md §3). A nil ItinID marks a "random"
// agent with no itinerary, which picks exits uniformly. A nil Street means
// the agent is not currently on any street: still at its source node
// waiting to enter, pending release at a node it has reached, or between
// a destroyed/just-reset lifecycle event and re-injection.
type Agent struct {
	ID core.AgentID

	// ItinID is nil for random agents.
	ItinID *core.ItinID

	// Street is the agent's current street, nil if not on a street.
	Street *core.StreetID
	// Lane is the agent's exit-queue lane index on Street, nil if not
	// queued on a lane (e.g. still in the waiting set or at a node).
	Lane *int

	Speed    float64
	Delay    core.Delay
	Distance float64
	Time     core.Time

	// SourceNode is used for re-injection/reinsertion.
	SourceNode core.NodeID

	// PendingNextStreet is the street id chosen in Stage C when the agent
	// committed its lane assignment; consumed by Stage A on the following
	// tick (or the same tick's node release).
	PendingNextStreet *core.StreetID

	// Reinsert, if true, means the agent is reset rather than destroyed
	// on arrival (spec.md §3 "Agent" lifecycle).
	Reinsert bool
}

// New constructs an Agent at srcNode with no itinerary assigned (random
// agent). Use WithItinerary to attach one.
func New(id core.AgentID, srcNode core.NodeID, reinsert bool) *Agent {
	return &Agent{ID: id, SourceNode: srcNode, Reinsert: reinsert}
}

// WithItinerary attaches itinID to the agent, making it a non-random agent
// that follows precomputed shortest paths toward itinID's destination.
func (a *Agent) WithItinerary(itinID core.ItinID) *Agent {
	id := itinID
	a.ItinID = &id

	return a
}

// IsRandom reports whether the agent has no itinerary and therefore picks
// exits uniformly.
func (a *Agent) IsRandom() bool { return a.ItinID == nil }

// OnStreet reports whether the agent is currently assigned to a street,
// and returns it if so.
func (a *Agent) OnStreet() (core.StreetID, bool) {
	if a.Street == nil {
		return 0, false
	}

	return *a.Street, true
}

// SetStreet assigns the agent to street, clearing any lane assignment.
func (a *Agent) SetStreet(s core.StreetID) {
	a.Street = &s
	a.Lane = nil
}

// ClearStreet removes the agent's street/lane assignment.
func (a *Agent) ClearStreet() {
	a.Street = nil
	a.Lane = nil
}

// SetLane records the agent's exit-queue lane on its current street.
func (a *Agent) SetLane(lane int) { a.Lane = &lane }

// PendingNext returns the agent's pending next-street memo, if any.
func (a *Agent) PendingNext() (core.StreetID, bool) {
	if a.PendingNextStreet == nil {
		return 0, false
	}

	return *a.PendingNextStreet, true
}

// SetPendingNext records id as the agent's pending next-street memo.
func (a *Agent) SetPendingNext(id core.StreetID) { a.PendingNextStreet = &id }

// ClearPendingNext drops the agent's pending next-street memo.
func (a *Agent) ClearPendingNext() { a.PendingNextStreet = nil }

// Reset returns the agent to pre-injection limbo: clears street, lane,
// delay, speed, distance, and pending next-street memo, and zeroes the
// elapsed-time counter (spec.md scenario S5: after reinsertion, time
// reads 1 on the tick after arrival, since Stage C always increments time
// once more after Reset runs).
func (a *Agent) Reset() {
	a.ClearStreet()
	a.Delay = 0
	a.Speed = 0
	a.Distance = 0
	a.ClearPendingNext()
	a.Time = 0
}
