// Package itinerary implements Itinerary, a destination plus a sparse
// boolean "next-hop" bitmap (spec.md §3 "Itinerary"). UpdatePaths computes
// one Itinerary per requested destination by running Dijkstra from that
// destination over the graph's reversed adjacency (street length as
// weight), in parallel across destinations, and fails the whole batch if
// any single destination is unreachable from some node.
package itinerary
