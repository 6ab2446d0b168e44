package street

import (
	"errors"

	"github.com/katalvlaran/trafficsim/core"
)

// Sentinel errors for the street package.
var (
	// ErrInvalidArgument aliases core.ErrInvalidArgument for construction
	// failures (non-positive length, speed, capacity or lane count).
	ErrInvalidArgument = core.ErrInvalidArgument

	// ErrAlreadyPresent indicates AddAgent was called with an id already
	// present in the waiting set or an exit queue.
	ErrAlreadyPresent = errors.New("street: agent already present")

	// ErrNotWaiting indicates Enqueue was called with an id not currently
	// in the waiting set.
	ErrNotWaiting = errors.New("street: agent not in waiting set")

	// ErrBadLane indicates a lane index outside [0, laneCount).
	ErrBadLane = errors.New("street: lane index out of range")
)
