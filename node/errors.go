package node

import (
	"errors"

	"github.com/katalvlaran/trafficsim/core"
)

// Sentinel errors for the node package.
var (
	// ErrFull aliases core.ErrFull: a node has refused admission at
	// capacity.
	ErrFull = core.ErrFull

	// ErrAlreadyPresent indicates AddAgent/Enqueue was called with an id
	// already pending release at this node.
	ErrAlreadyPresent = errors.New("node: agent already present")

	// ErrInvalidArgument aliases core.ErrInvalidArgument for bad cycle
	// parameters or unknown street/direction lookups.
	ErrInvalidArgument = core.ErrInvalidArgument

	// ErrNoCycle indicates a TrafficLight was consulted for a street it
	// has no configured cycle for; an invariant violation (spec.md §7).
	ErrNoCycle = core.ErrProgrammingError
)
