package dynamics

import "github.com/katalvlaran/trafficsim/core"

// Sentinel errors for the dynamics package; all alias core's taxonomy
// (spec.md §7 "Error handling design").
var (
	// ErrInvalidArgument signals a bad parameter, an unknown node/street/
	// itinerary id, or a random agent injected with no itineraries
	// available (spec.md §8 boundary behaviors).
	ErrInvalidArgument = core.ErrInvalidArgument

	// ErrOverflow signals a monotonically growing counter wrapping, or
	// graph capacity exhaustion at injection (spec.md §7).
	ErrOverflow = core.ErrOverflow

	// ErrProgrammingError signals an invariant breach: duplicate agent,
	// full queue on an enqueue the kernel itself performs, a missing
	// pending-next-street memo where one is required, or a traffic light
	// consulted for a street with no configured cycle (spec.md §7).
	ErrProgrammingError = core.ErrProgrammingError

	// ErrNoPathToDestination signals an agent stranded at a node with no
	// outgoing streets at all (spec.md §4.5 "Next-street selection").
	ErrNoPathToDestination = core.ErrNoPathToDestination
)
