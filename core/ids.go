package core

// NodeID uniquely identifies a Node within a Graph.
type NodeID uint32

// StreetID uniquely identifies a Street within a Graph. After
// Graph.BuildAdjacency, StreetID == src*N + dst in canonical form, where N
// is the number of nodes in the graph.
type StreetID uint32

// AgentID uniquely identifies an Agent within a RoadDynamics instance.
type AgentID uint32

// ItinID uniquely identifies an Itinerary within a RoadDynamics instance.
type ItinID uint32

// Delay is a small tick count, used for traffic-light cycle lengths and
// phases where values never exceed a handful of ticks.
type Delay uint8

// Time is the tick counter carried by RoadDynamics.
type Time uint64
