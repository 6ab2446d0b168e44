package graph

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/node"
	"github.com/katalvlaran/trafficsim/sparsematrix"
	"github.com/katalvlaran/trafficsim/street"
)

// coordsProvider is satisfied by every node.Node variant through its
// embedded node.Base; used to recompute bearings from coordinates when
// present.
type coordsProvider interface {
	Coords() (lat, lon float64, ok bool)
}

// Graph owns nodes keyed by core.NodeID and streets keyed by core.StreetID
// (spec.md §3 "Graph", "Ownership"). Before BuildAdjacency, ids are
// whatever the caller assigned; node ids must form a dense [0, N) range,
// since the canonical renumbering src*N+dst addresses streets by node
// index. After BuildAdjacency no further AddNode/AddStreet is accepted.
type Graph struct {
	mu sync.RWMutex

	nodes   map[core.NodeID]node.Node
	streets map[core.StreetID]*street.Street

	adj         *sparsematrix.SparseMatrix[bool]
	built       bool
	maxCapacity int
}

// New constructs an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[core.NodeID]node.Node),
		streets: make(map[core.StreetID]*street.Street),
	}
}

// AddNode registers n. Fails with ErrAlreadyPresent if n's id is already
// registered, or ErrAlreadyBuilt if BuildAdjacency has already run.
func (g *Graph) AddNode(n node.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.built {
		return fmt.Errorf("%w: AddNode after BuildAdjacency", ErrAlreadyBuilt)
	}
	if _, ok := g.nodes[n.ID()]; ok {
		return fmt.Errorf("%w: node %d", ErrAlreadyPresent, n.ID())
	}
	g.nodes[n.ID()] = n

	return nil
}

// AddStreet registers s. Fails with ErrInvalidArgument if either endpoint
// is not a registered node, ErrAlreadyPresent if s's id is already
// registered, or ErrAlreadyBuilt if BuildAdjacency has already run.
func (g *Graph) AddStreet(s *street.Street) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.built {
		return fmt.Errorf("%w: AddStreet after BuildAdjacency", ErrAlreadyBuilt)
	}
	if _, ok := g.nodes[s.Src()]; !ok {
		return fmt.Errorf("%w: street %d references unregistered src node %d", ErrInvalidArgument, s.ID(), s.Src())
	}
	if _, ok := g.nodes[s.Dst()]; !ok {
		return fmt.Errorf("%w: street %d references unregistered dst node %d", ErrInvalidArgument, s.ID(), s.Dst())
	}
	if _, ok := g.streets[s.ID()]; ok {
		return fmt.Errorf("%w: street %d", ErrAlreadyPresent, s.ID())
	}
	g.streets[s.ID()] = s

	return nil
}

// BuildAdjacency renumbers every street to the canonical src*N+dst id
// (N = node count), builds the N×N adjacency bitmap, recomputes bearings
// from node coordinates where both endpoints carry them, and caches the
// graph's maximum agent capacity as the sum of every street's Capacity().
// Node ids must form a dense [0, N) range; BuildAdjacency may run exactly
// once.
func (g *Graph) BuildAdjacency() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.built {
		return fmt.Errorf("%w: BuildAdjacency called twice", ErrAlreadyBuilt)
	}

	n := len(g.nodes)
	for id := range g.nodes {
		if int(id) >= n {
			return fmt.Errorf("%w: node ids must be dense [0,%d), found %d", ErrInvalidArgument, n, id)
		}
	}

	adj, err := sparsematrix.New[bool](n, n)
	if err != nil {
		return err
	}

	renumbered := make(map[core.StreetID]*street.Street, len(g.streets))
	maxCapacity := 0
	for _, s := range g.streets {
		canonical := core.StreetID(uint32(s.Src())*uint32(n) + uint32(s.Dst()))
		if _, ok := renumbered[canonical]; ok {
			return fmt.Errorf("%w: streets %d->%d collide under canonical renumbering", ErrAlreadyPresent, s.Src(), s.Dst())
		}
		s.SetID(canonical)
		renumbered[canonical] = s
		maxCapacity += s.Capacity()

		if err := adj.InsertOrAssign(int(s.Src()), int(s.Dst()), true); err != nil {
			return err
		}

		if srcN, srcOK := g.nodes[s.Src()].(coordsProvider); srcOK {
			if dstN, dstOK := g.nodes[s.Dst()].(coordsProvider); dstOK {
				srcLat, srcLon, has1 := srcN.Coords()
				dstLat, dstLon, has2 := dstN.Coords()
				if has1 && has2 {
					s.SetBearing(math.Atan2(dstLat-srcLat, dstLon-srcLon))
				}
			}
		}
	}

	g.streets = renumbered
	g.adj = adj
	g.maxCapacity = maxCapacity
	g.built = true

	return nil
}

// IsBuilt reports whether BuildAdjacency has run.
func (g *Graph) IsBuilt() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.built
}

// NumNodes returns the registered node count.
func (g *Graph) NumNodes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// MaxCapacity returns the cached sum of every street's total vehicle
// capacity, valid only after BuildAdjacency.
func (g *Graph) MaxCapacity() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.maxCapacity
}

// Node returns the node registered under id.
func (g *Graph) Node(id core.NodeID) (node.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]

	return n, ok
}

// Street returns the street registered under id (its canonical id after
// BuildAdjacency).
func (g *Graph) Street(id core.StreetID) (*street.Street, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s, ok := g.streets[id]

	return s, ok
}

// NodeIDs returns every registered node id in ascending order.
func (g *Graph) NodeIDs() []core.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]core.NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// OutgoingStreets returns every street whose src is nodeID, ordered by
// ascending dst node id. Valid only after BuildAdjacency, since it relies
// on the canonical src*N+dst id to locate each street directly from the
// adjacency row.
func (g *Graph) OutgoingStreets(nodeID core.NodeID) ([]*street.Street, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.built {
		return nil, fmt.Errorf("%w: OutgoingStreets before BuildAdjacency", ErrNotBuilt)
	}

	row, err := g.adj.GetRow(int(nodeID), false)
	if err != nil {
		return nil, err
	}

	dsts := make([]int, 0, len(row))
	for dst := range row {
		dsts = append(dsts, dst)
	}
	sort.Ints(dsts)

	n := len(g.nodes)
	out := make([]*street.Street, 0, len(dsts))
	for _, dst := range dsts {
		canonical := core.StreetID(uint32(nodeID)*uint32(n) + uint32(dst))
		s, ok := g.streets[canonical]
		if !ok {
			return nil, fmt.Errorf("%w: adjacency marks %d->%d but no street registered", core.ErrProgrammingError, nodeID, dst)
		}
		out = append(out, s)
	}

	return out, nil
}

// StreetIDs returns every registered street id in ascending order.
func (g *Graph) StreetIDs() []core.StreetID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]core.StreetID, 0, len(g.streets))
	for id := range g.streets {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Adjacency returns the built adjacency bitmap. Callers must not mutate
// it; it is owned by Graph.
func (g *Graph) Adjacency() (*sparsematrix.SparseMatrix[bool], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.built {
		return nil, fmt.Errorf("%w: Adjacency before BuildAdjacency", ErrNotBuilt)
	}

	return g.adj, nil
}
