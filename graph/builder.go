package graph

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/katalvlaran/trafficsim/core"
	"github.com/katalvlaran/trafficsim/node"
	"github.com/katalvlaran/trafficsim/street"
)

// NewGridNetwork builds a rows×cols orthogonal grid of plain Intersections
// (deterministic, row-major NodeIDs r*cols+c) connected to their right and
// bottom neighbors by a pair of opposing streets each, then calls
// BuildAdjacency. It exists for tests and the demo binary; it is not a
// general-purpose topology generator (spec.md places file-based graph
// loading out of scope, so every test/demo network is built this way).
//
// Every node gets (row, col) coordinates so BuildAdjacency's bearing
// recomputation exercises real data: right neighbors get bearing 0, bottom
// neighbors get bearing π/2.
func NewGridNetwork(rows, cols int, streetLength float64, nodeCapacity, nodeTransportCapacity int, streetOpts ...street.Option) (*Graph, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: rows=%d cols=%d (each must be >= 1)", ErrInvalidArgument, rows, cols)
	}

	g := New()

	ids := lo.Range(rows * cols)
	lo.ForEach(ids, func(id int, _ int) {
		r, c := id/cols, id%cols
		n := node.NewIntersection(core.NodeID(id), nodeCapacity, nodeTransportCapacity)
		n.SetCoords(float64(r), float64(c))
		// AddNode cannot fail here: ids are unique by construction.
		_ = g.AddNode(n)
	})

	nextStreetID := core.StreetID(0)
	addStreet := func(src, dst core.NodeID) error {
		s, err := street.New(nextStreetID, src, dst, streetLength, streetOpts...)
		if err != nil {
			return err
		}
		nextStreetID++

		return g.AddStreet(s)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			u := core.NodeID(r*cols + c)

			if c+1 < cols {
				v := core.NodeID(r*cols + c + 1)
				if err := addStreet(u, v); err != nil {
					return nil, err
				}
				if err := addStreet(v, u); err != nil {
					return nil, err
				}
			}

			if r+1 < rows {
				v := core.NodeID((r+1)*cols + c)
				if err := addStreet(u, v); err != nil {
					return nil, err
				}
				if err := addStreet(v, u); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := g.BuildAdjacency(); err != nil {
		return nil, err
	}

	return g, nil
}
