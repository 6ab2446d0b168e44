package itinerary

import "github.com/katalvlaran/trafficsim/core"

// Sentinel errors for the itinerary package.
var (
	// ErrInvalidArgument aliases core.ErrInvalidArgument: an unknown
	// destination node id.
	ErrInvalidArgument = core.ErrInvalidArgument

	// ErrNoPathToDestination aliases core.ErrNoPathToDestination: some node
	// has no path to the itinerary's destination (spec.md §4.4 step 3).
	ErrNoPathToDestination = core.ErrNoPathToDestination
)
