// Package street implements the Street and SpireStreet model: a directed
// edge with length, free-flow speed, per-lane capacity, a waiting set of
// agents not yet queued at the downstream end, and one FIFO exit queue per
// lane (spec.md §4.2).
//
// A Street discriminates Plain from Spire via an internal spire flag
// rather than a separate wrapper type (spec.md §9's tagged-sum-type
// redesign note): a SpireStreet is a Street constructed with Spire()
// that additionally tracks monotone in/out counters.
//
// Errors:
//
//	ErrInvalidArgument - non-positive length/speed/capacity/lanes.
//	ErrAlreadyPresent  - AddAgent called for an id already on the street.
//	ErrNotWaiting      - Enqueue called for an id not in the waiting set.
package street
