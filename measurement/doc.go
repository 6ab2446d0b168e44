// Package measurement implements the scalar mean/stddev reducer used for
// per-tick observables (spec.md §2 "Measurement"), plus a streaming
// travel-time reducer over agents as they complete their itineraries
// (SPEC_FULL.md §4 supplement: travel time is observed incrementally
// across the run, not as a per-tick batch like density or speed).
package measurement
