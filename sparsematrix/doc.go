// Package sparsematrix implements a generic sparse matrix keyed by linear
// index i*cols+j over a hash map, with O(1) expected access (spec.md
// §4.1). It backs both Graph's adjacency matrix and Itinerary's per-node
// next-hop bitmap.
//
// Only a narrow slice of matrix algebra is implemented: the simulation
// kernel calls InsertOrAssign and GetRow(keepID=false), and Insert,
// Contains, GetCol and Reshape are provided alongside them; arithmetic (Add, transpose, Laplacian,
// degree vector, row/column normalization) is deliberately out of scope,
// since no trafficsim component consumes it.
//
// Errors:
//
//	ErrIndexOutOfRange - row or column outside the declared shape.
//	ErrBadShape        - non-positive rows or cols passed to New/Reshape.
package sparsematrix
