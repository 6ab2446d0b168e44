package itinerary

import (
	"sort"

	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/sparsematrix"
)

// Itinerary is a destination node plus a sparse N×N boolean matrix P where
// P[u, v] = true iff street u→v lies on some shortest path (by length)
// from u to the destination (spec.md §3 "Itinerary"). It is built and
// replaced wholesale by UpdatePaths; nothing mutates it during a tick.
type Itinerary struct {
	id          core.ItinID
	destination core.NodeID
	paths       *sparsematrix.SparseMatrix[bool]
}

// Destination returns the itinerary's target node.
func (it *Itinerary) Destination() core.NodeID { return it.destination }

// ID returns the itinerary's id.
func (it *Itinerary) ID() core.ItinID { return it.id }

// Candidates returns the out-neighbor node ids v for which P[u, v] = true,
// in ascending order. An empty result for a non-destination u cannot occur
// in an Itinerary produced by UpdatePaths (it would have failed with
// ErrNoPathToDestination instead).
func (it *Itinerary) Candidates(u core.NodeID) ([]core.NodeID, error) {
	row, err := it.paths.GetRow(int(u), false)
	if err != nil {
		return nil, err
	}

	out := make([]core.NodeID, 0, len(row))
	for v, ok := range row {
		if ok {
			out = append(out, core.NodeID(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}
