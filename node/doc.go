// Package node implements the three Node variants — Intersection,
// TrafficLight, and Roundabout — behind a common Node interface (spec.md
// §4.3). Each variant is its own concrete struct rather than a class
// hierarchy with downcasts, per spec.md §9's tagged-sum-type redesign
// note; TrafficLight embeds *Intersection to reuse its angle-keyed release
// order and priority-street bookkeeping.
//
// Errors:
//
//	ErrFull            - AddAgent/Enqueue called on a node at capacity.
//	ErrAlreadyPresent  - AddAgent called for an id already pending release.
//	ErrInvalidArgument - bad cycle parameters or unknown street/direction.
//	ErrNoCycle         - a TrafficLight was consulted for a street with no
//	                     configured cycle.
package node
