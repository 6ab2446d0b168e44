// Package agent implements Agent, a simulated vehicle with an itinerary
// (or a random route) and a position within the graph (spec.md §3
// "Agent"). Agents are owned exclusively by the dynamics package; every
// cross-reference (current street, itinerary) travels as an id.
package agent
