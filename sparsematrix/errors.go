package sparsematrix

import (
	"errors"

	"github.com/katalvlaran/trafficsim/core"
)

// Sentinel errors for the sparsematrix package. ErrIndexOutOfRange aliases
// core's shared taxonomy so callers across trafficsim can match with a
// single errors.Is(err, core.ErrIndexOutOfRange) regardless of which
// package produced the error; ErrBadShape is local to this package.
var (
	// ErrIndexOutOfRange indicates a (row, col) or linear index outside
	// the matrix's declared shape.
	ErrIndexOutOfRange = core.ErrIndexOutOfRange

	// ErrBadShape indicates a non-positive rows or cols value was passed
	// to New or Reshape.
	ErrBadShape = errors.New("sparsematrix: rows and cols must be > 0")
)
