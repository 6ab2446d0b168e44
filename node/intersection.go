package node

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/trafficsim/core"
)

// PendingEntry pairs a turn key with the agent waiting to be released for
// that turn (spec.md §4.3 "Intersection").
type PendingEntry struct {
	AngleKey int
	AgentID  core.AgentID
}

// Intersection is an angle-ordered multimap of pending agents, releasing
// the rightmost turn first (smallest signed centi-radian key), plus a set
// of "priority" incoming streets used by the traffic-light optimizer
// (spec.md §4.3).
type Intersection struct {
	Base

	byKey       map[int][]core.AgentID
	present     map[core.AgentID]struct{}
	priority    map[core.StreetID]struct{}
	randomOrder bool // opt-in RandomIntersection release order (SPEC_FULL.md §4)
}

// NewIntersection constructs an Intersection with the given id and
// capacity (occupancy cap and per-tick transport cap).
func NewIntersection(id core.NodeID, capacity, transportCapacity int) *Intersection {
	return &Intersection{
		Base:     NewBase(id, capacity, transportCapacity),
		byKey:    make(map[int][]core.AgentID),
		present:  make(map[core.AgentID]struct{}),
		priority: make(map[core.StreetID]struct{}),
	}
}

// WithRandomRelease switches this Intersection to release agents in random
// order instead of angle-key order, matching the original source's
// RandomIntersection variant (SPEC_FULL.md §4). It is an opt-in behavioral
// flag rather than a separate type, since release order is the only
// difference.
func (n *Intersection) WithRandomRelease() *Intersection {
	n.randomOrder = true

	return n
}

// MarkPriority records streetID as a priority incoming street, used by the
// traffic-light optimizer to partition incoming streets into green- and
// red-priority sets.
func (n *Intersection) MarkPriority(streetID core.StreetID) {
	n.priority[streetID] = struct{}{}
}

// IsPriority reports whether streetID was marked priority.
func (n *Intersection) IsPriority(streetID core.StreetID) bool {
	_, ok := n.priority[streetID]

	return ok
}

// PriorityStreets returns a snapshot of the priority incoming street set.
func (n *Intersection) PriorityStreets() []core.StreetID {
	out := make([]core.StreetID, 0, len(n.priority))
	for id := range n.priority {
		out = append(out, id)
	}

	return out
}

// Occupancy returns the number of agents currently pending release.
func (n *Intersection) Occupancy() int { return len(n.present) }

// IsFull reports whether Occupancy() has reached Capacity().
func (n *Intersection) IsFull() bool { return n.Occupancy() >= n.Capacity() }

// AddAgent inserts id keyed by angleKey (signed centi-radians). Fails with
// ErrFull if occupancy has reached capacity, or ErrAlreadyPresent if id is
// already pending release here.
func (n *Intersection) AddAgent(angleKey int, id core.AgentID) error {
	if n.IsFull() {
		return fmt.Errorf("%w: intersection %d", ErrFull, n.ID())
	}
	if _, ok := n.present[id]; ok {
		return fmt.Errorf("%w: agent %d", ErrAlreadyPresent, id)
	}
	n.byKey[angleKey] = append(n.byKey[angleKey], id)
	n.present[id] = struct{}{}

	return nil
}

// RemoveAgent erases every entry for id across all angle keys.
func (n *Intersection) RemoveAgent(id core.AgentID) {
	if _, ok := n.present[id]; !ok {
		return
	}
	delete(n.present, id)
	for key, ids := range n.byKey {
		for i, a := range ids {
			if a == id {
				n.byKey[key] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(n.byKey[key]) == 0 {
			delete(n.byKey, key)
		}
	}
}

// Pending returns the agents currently awaiting release, in release order:
// ascending angle key (rightmost turn first) with ties broken by insertion
// order, unless WithRandomRelease was set, in which case rng determines
// the order.
func (n *Intersection) Pending(rng *core.RNG) []PendingEntry {
	out := make([]PendingEntry, 0, len(n.present))
	keys := make([]int, 0, len(n.byKey))
	for k := range n.byKey {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		for _, id := range n.byKey[k] {
			out = append(out, PendingEntry{AngleKey: k, AgentID: id})
		}
	}

	if n.randomOrder && rng != nil && len(out) > 1 {
		for i := len(out) - 1; i > 0; i-- {
			j := rng.IntN(i + 1)
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}
