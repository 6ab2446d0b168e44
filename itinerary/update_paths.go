package itinerary

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/graph"
	"github.com/katalvlaran/trafficsim/sparsematrix"
	"github.com/katalvlaran/trafficsim/street"
)

// Request names one itinerary to compute: an id and a destination node.
type Request struct {
	ID          core.ItinID
	Destination core.NodeID
}

// reverseIndex groups every street by its Dst, so the Dijkstra run from a
// destination can walk "incoming" edges without a separate reversed graph.
type reverseIndex map[core.NodeID][]*street.Street

// UpdatePaths computes one Itinerary per request, in parallel, and
// propagates the first failure (spec.md §4.4 "Path updates for all
// itineraries are computed in parallel"). g must already be built.
func UpdatePaths(ctx context.Context, g *graph.Graph, requests []Request) ([]*Itinerary, error) {
	if !g.IsBuilt() {
		return nil, fmt.Errorf("%w: UpdatePaths before BuildAdjacency", graph.ErrNotBuilt)
	}

	rev, err := buildReverseIndex(g)
	if err != nil {
		return nil, err
	}

	out := make([]*Itinerary, len(requests))
	grp, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		if _, ok := g.Node(req.Destination); !ok {
			return nil, fmt.Errorf("%w: destination node %d not registered", ErrInvalidArgument, req.Destination)
		}
		grp.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			it, err := computeOne(g, rev, req)
			if err != nil {
				return err
			}
			out[i] = it

			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func buildReverseIndex(g *graph.Graph) (reverseIndex, error) {
	rev := make(reverseIndex)
	for _, u := range g.NodeIDs() {
		outs, err := g.OutgoingStreets(u)
		if err != nil {
			return nil, err
		}
		for _, s := range outs {
			rev[s.Dst()] = append(rev[s.Dst()], s)
		}
	}

	return rev, nil
}

// computeOne runs single-source Dijkstra from req.Destination over the
// reversed adjacency (weight = street length), then populates P[u, v] for
// every u's out-neighbor v whose inclusion preserves the optimal distance
// d(u) == length(u,v) + d(v), ties kept (spec.md §4.4 steps 1-2). If any
// non-destination node ends up with an empty row, the whole itinerary
// fails with ErrNoPathToDestination, rather than silently publishing a
// partial path (spec.md §9 Open Question 1).
func computeOne(g *graph.Graph, rev reverseIndex, req Request) (*Itinerary, error) {
	n := g.NumNodes()
	dist := make([]float64, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[int(req.Destination)] = 0

	pq := make(nodePQ, 0, n)
	heap.Init(&pq)
	heap.Push(&pq, &nodeItem{id: req.Destination, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*nodeItem)
		u := item.id
		if visited[int(u)] {
			continue
		}
		visited[int(u)] = true

		for _, s := range rev[u] {
			x := s.Src()
			cand := dist[int(u)] + s.Length()
			if cand < dist[int(x)] {
				dist[int(x)] = cand
				heap.Push(&pq, &nodeItem{id: x, dist: cand})
			}
		}
	}

	paths, err := sparsematrix.New[bool](n, n)
	if err != nil {
		return nil, err
	}

	const epsilon = 1e-6
	for u := core.NodeID(0); int(u) < n; u++ {
		if u == req.Destination {
			continue
		}
		if math.IsInf(dist[int(u)], 1) {
			return nil, fmt.Errorf("%w: node %d has no path to destination %d", ErrNoPathToDestination, u, req.Destination)
		}

		outs, err := g.OutgoingStreets(u)
		if err != nil {
			return nil, err
		}

		rowEmpty := true
		for _, s := range outs {
			v := s.Dst()
			if math.IsInf(dist[int(v)], 1) {
				continue
			}
			if math.Abs(dist[int(u)]-(s.Length()+dist[int(v)])) <= epsilon {
				if err := paths.InsertOrAssign(int(u), int(v), true); err != nil {
					return nil, err
				}
				rowEmpty = false
			}
		}
		if rowEmpty {
			return nil, fmt.Errorf("%w: node %d has no optimal out-neighbor toward destination %d", ErrNoPathToDestination, u, req.Destination)
		}
	}

	return &Itinerary{id: req.ID, destination: req.Destination, paths: paths}, nil
}

// nodeItem and nodePQ implement a lazy-decrease-key min-heap over
// (NodeID, distance) pairs, adapted from the teacher's dijkstra package.
type nodeItem struct {
	id   core.NodeID
	dist float64
}

type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
