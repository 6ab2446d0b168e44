package node

import (
	"fmt"

	"github.com/katalvlaran/trafficsim/core"
)

// Roundabout is a single FIFO of agents; priority is implicit, since
// already-inside agents always dominate arrivals (spec.md §4.3).
type Roundabout struct {
	Base

	queue   []core.AgentID
	present map[core.AgentID]struct{}
}

// NewRoundabout constructs a Roundabout with the given id, capacity and
// transport capacity.
func NewRoundabout(id core.NodeID, capacity, transportCapacity int) *Roundabout {
	return &Roundabout{
		Base:    NewBase(id, capacity, transportCapacity),
		present: make(map[core.AgentID]struct{}),
	}
}

// Occupancy returns the number of agents currently in the FIFO.
func (r *Roundabout) Occupancy() int { return len(r.queue) }

// IsFull reports whether Occupancy() has reached Capacity().
func (r *Roundabout) IsFull() bool { return r.Occupancy() >= r.Capacity() }

// Enqueue appends id to the back of the FIFO. Fails with ErrFull if the
// roundabout is at capacity, or ErrAlreadyPresent if id is already queued.
func (r *Roundabout) Enqueue(id core.AgentID) error {
	if r.IsFull() {
		return fmt.Errorf("%w: roundabout %d", ErrFull, r.ID())
	}
	if _, ok := r.present[id]; ok {
		return fmt.Errorf("%w: agent %d", ErrAlreadyPresent, id)
	}
	r.queue = append(r.queue, id)
	r.present[id] = struct{}{}

	return nil
}

// Dequeue pops and returns the front of the FIFO. Returns ok=false if
// empty.
func (r *Roundabout) Dequeue() (core.AgentID, bool) {
	if len(r.queue) == 0 {
		return 0, false
	}
	id := r.queue[0]
	r.queue = r.queue[1:]
	delete(r.present, id)

	return id, true
}

// Front returns (without removing) the front of the FIFO. Returns
// ok=false if empty.
func (r *Roundabout) Front() (core.AgentID, bool) {
	if len(r.queue) == 0 {
		return 0, false
	}

	return r.queue[0], true
}
