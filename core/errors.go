package core

import "errors"

// Sentinel errors shared across every trafficsim package. Callers should
// match with errors.Is; call sites that need context wrap these with
// fmt.Errorf("...: %w", ErrX) rather than minting new error values.
var (
	// ErrInvalidArgument indicates a bad parameter, an unknown id, or a
	// malformed input (e.g. a negative street length, an unset itinerary).
	ErrInvalidArgument = errors.New("trafficsim: invalid argument")

	// ErrIndexOutOfRange indicates a SparseMatrix access outside its
	// declared rows/cols shape.
	ErrIndexOutOfRange = errors.New("trafficsim: index out of range")

	// ErrNoPathToDestination indicates that an itinerary's path matrix has
	// no outgoing edge recorded for some non-destination node, i.e. the
	// destination is unreachable from it.
	ErrNoPathToDestination = errors.New("trafficsim: no path to destination")

	// ErrFull indicates a node or street refused to admit an agent because
	// it is at capacity. Reported to the caller only for explicit
	// injection/AddAgent attempts; the kernel handles internal admission
	// refusals (queueing/skipping) without surfacing this error.
	ErrFull = errors.New("trafficsim: node or street is full")

	// ErrOverflow indicates a monotonically growing counter would wrap, or
	// that graph capacity is exhausted at agent injection.
	ErrOverflow = errors.New("trafficsim: overflow")

	// ErrProgrammingError indicates an invariant was violated: a duplicate
	// agent id across queues, a missing pending next-street memo where one
	// is required, or a traffic light consulted for a street/direction it
	// has no cycle configured for. These are bugs in the caller or the
	// kernel, never a consequence of valid input; callers should treat
	// them as fatal.
	ErrProgrammingError = errors.New("trafficsim: programming error")
)
