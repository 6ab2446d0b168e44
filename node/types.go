package node

import "github.com/katalvlaran/trafficsim/core"

// Node is the abstract capability set shared by every node variant: id,
// capacity, transport capacity, occupancy count and fullness (spec.md §3
// "Node (abstract)"). It has no density method and no method to admit or
// reject agents; admission goes through each variant's own methods.
type Node interface {
	// ID returns the node's id.
	ID() core.NodeID
	// Capacity returns the maximum occupancy this node admits.
	Capacity() int
	// TransportCapacity returns how many release attempts this node is
	// allowed per tick.
	TransportCapacity() int
	// Occupancy returns the number of agents currently pending release
	// at this node.
	Occupancy() int
	// IsFull reports whether Occupancy() has reached Capacity().
	IsFull() bool
}

// Base holds the attributes every Node variant shares: id, optional
// coordinates, capacity and transport capacity (spec.md §3).
type Base struct {
	id                core.NodeID
	lat, lon          float64
	hasCoords         bool
	capacity          int
	transportCapacity int
}

// NewBase constructs a Base with the given id, capacity and transport
// capacity. Both capacities must be >= 1.
func NewBase(id core.NodeID, capacity, transportCapacity int) Base {
	return Base{id: id, capacity: capacity, transportCapacity: transportCapacity}
}

// ID returns the node's id.
func (b *Base) ID() core.NodeID { return b.id }

// Capacity returns the node's maximum occupancy.
func (b *Base) Capacity() int { return b.capacity }

// TransportCapacity returns the node's per-tick release cap.
func (b *Base) TransportCapacity() int { return b.transportCapacity }

// SetCoords records optional (lat, lon) coordinates for this node.
func (b *Base) SetCoords(lat, lon float64) {
	b.lat, b.lon, b.hasCoords = lat, lon, true
}

// Coords returns the node's coordinates and whether any were set.
func (b *Base) Coords() (lat, lon float64, ok bool) {
	return b.lat, b.lon, b.hasCoords
}
