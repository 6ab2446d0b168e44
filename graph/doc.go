// Package graph implements Graph, the exclusive owner of nodes and streets
// (spec.md §3 "Graph"). Graph accumulates nodes and streets under caller-
// chosen ids, then BuildAdjacency renumbers every street to the canonical
// src*N+dst id, builds the adjacency bitmap, recomputes bearings from node
// coordinates where present, and caches the graph's maximum agent capacity.
// No further mutation is permitted after BuildAdjacency; this mirrors
// spec.md §9's "renumbering happens once at build_adj" design note.
package graph
