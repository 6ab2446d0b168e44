package street

import "github.com/katalvlaran/trafficsim/core"

// AssignSpeed draws the speed (m/s) assigned to an agent entering this
// street, per spec.md §4.2's first-order speed rule: a Gaussian with mean
// v_max·(1 - minSpeedRatio·ρ) and relative stdev fluctuationStd, where ρ is
// the street's current normalized density. Negative draws are clipped to
// v_max·(1 - minSpeedRatio).
func (s *Street) AssignSpeed(rng *core.RNG, minSpeedRatio, fluctuationStd float64) float64 {
	rho := s.Density(true)
	mean := s.maxSpeed * (1 - minSpeedRatio*rho)
	draw := mean + rng.NormFloat64()*mean*fluctuationStd
	if draw < 0 {
		return s.maxSpeed * (1 - minSpeedRatio)
	}

	return draw
}

// MeanSpeedClosedForm returns the closed-form mean speed of a street with
// n agents in its waiting set and no currently exiting agents:
//
//	v_max · n · (1 - ½·(minSpeedRatio/laneCapacity)·(n-1))
//
// per spec.md §4.2. It covers only streets without exiting agents; no
// function in this module computes a street's mean speed from its agents'
// actual speeds when agents are exiting.
func (s *Street) MeanSpeedClosedForm(n int, minSpeedRatio float64) float64 {
	if n <= 0 {
		return 0
	}

	return s.maxSpeed * float64(n) * (1 - 0.5*(minSpeedRatio/float64(s.laneCapacity))*float64(n-1))
}
