package graph

import (
	"errors"

	"github.com/katalvlaran/trafficsim/core"
)

// Sentinel errors for the graph package.
var (
	// ErrInvalidArgument aliases core.ErrInvalidArgument: unknown node/street
	// id, non-dense node id range, or a street referencing an unregistered
	// endpoint.
	ErrInvalidArgument = core.ErrInvalidArgument

	// ErrAlreadyPresent indicates AddNode/AddStreet was called with an id
	// already registered, or BuildAdjacency found two streets sharing the
	// same (src, dst) pair (which would collide under canonical renumbering).
	ErrAlreadyPresent = errors.New("graph: id already registered")

	// ErrAlreadyBuilt indicates BuildAdjacency was called a second time, or
	// AddNode/AddStreet was called after BuildAdjacency (spec.md §9 forbids
	// mutation after build_adj).
	ErrAlreadyBuilt = core.ErrProgrammingError

	// ErrNotBuilt indicates a traversal method was called before
	// BuildAdjacency.
	ErrNotBuilt = core.ErrProgrammingError
)
