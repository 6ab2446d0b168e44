package core

import "math/rand"

// RNG is the single seeded pseudo-random source owned by a RoadDynamics
// instance. Every stochastic choice in the kernel (speed fluctuation,
// passage/error probability coin-flips, random-agent exit choice) draws
// from the same RNG, so a given seed and a deterministic iteration order
// over nodes/streets reproduce a run exactly (spec.md §5, §9).
//
// RNG is not safe for concurrent use; the kernel is single-threaded
// per tick and this must not be shared across goroutines.
type RNG struct {
	r *rand.Rand
}

// NewRNG seeds a new RNG. The same seed always yields the same sequence of
// draws for a given sequence of method calls.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (g *RNG) Float64() float64 { return g.r.Float64() }

// NormFloat64 returns a normally distributed float64 with mean 0, stdev 1.
func (g *RNG) NormFloat64() float64 { return g.r.NormFloat64() }

// IntN returns a pseudo-random number in [0, n). Panics if n <= 0.
func (g *RNG) IntN(n int) int { return g.r.Intn(n) }

// Bernoulli returns true with probability p (clamped to [0,1]).
func (g *RNG) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}

	return g.r.Float64() < p
}
