// Package dynamics implements RoadDynamics, the simulation driver (spec.md
// §2 "RoadDynamics", §4.5 "RoadDynamics — the tick"). RoadDynamics owns
// every Agent and Itinerary; the Graph it drives is read-only during a
// tick. One Evolve call advances the simulation by exactly one tick
// through Stage A (streets), Stage B (nodes), Stage C (agents) and Stage D
// (time advance), in that fixed order, then optionally runs the
// traffic-light optimizer when a data-update period has elapsed.
package dynamics
