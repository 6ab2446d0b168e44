// Package core defines the identifier types, sentinel errors, and the
// owned pseudo-random source shared by every trafficsim package.
//
// trafficsim's kernel packages (sparsematrix, street, node, agent,
// itinerary, graph, dynamics) never reference each other's internals by
// pointer; they share the id types declared here (NodeID, StreetID,
// AgentID, ItinID, Delay, Time) and look each other up by id in the owning
// container, per the ownership model in spec.md §3.
//
// Errors:
//
//	ErrInvalidArgument    - bad parameter, unknown id, or malformed input.
//	ErrIndexOutOfRange    - sparse-matrix access outside declared shape.
//	ErrNoPathToDestination - an itinerary has no path from some node.
//	ErrFull               - a node or street refused admission.
//	ErrOverflow           - a monotonically growing counter would wrap, or
//	                        graph capacity is exhausted at injection.
//	ErrProgrammingError   - an invariant was violated (duplicate agent in
//	                        queues, missing pending next-street memo, a
//	                        traffic light with no cycle for an incoming
//	                        street). These abort; they are never expected
//	                        in correct callers.
package core
