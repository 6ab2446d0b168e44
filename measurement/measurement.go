package measurement

import "math"

// Stats is a mean/stddev pair plus the sample count it was drawn from.
type Stats struct {
	Mean   float64
	StdDev float64
	N      int
}

// Reduce computes the population mean and standard deviation of values in
// two passes. An empty slice yields a zero Stats.
func Reduce(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}

	return Stats{Mean: mean, StdDev: math.Sqrt(sqDiff / float64(n)), N: n}
}

// TravelTimeReducer accumulates completed-agent travel times as they
// arrive, one at a time, using Welford's online algorithm so the running
// mean/stddev never requires holding the full history in memory.
type TravelTimeReducer struct {
	n    int
	mean float64
	m2   float64
}

// Add folds travelTime into the running statistics.
func (r *TravelTimeReducer) Add(travelTime float64) {
	r.n++
	delta := travelTime - r.mean
	r.mean += delta / float64(r.n)
	delta2 := travelTime - r.mean
	r.m2 += delta * delta2
}

// Stats returns the current mean/stddev/count. A reducer with no samples
// yields a zero Stats.
func (r *TravelTimeReducer) Stats() Stats {
	if r.n == 0 {
		return Stats{}
	}

	return Stats{Mean: r.mean, StdDev: math.Sqrt(r.m2 / float64(r.n)), N: r.n}
}

// Reset clears all accumulated samples.
func (r *TravelTimeReducer) Reset() {
	r.n, r.mean, r.m2 = 0, 0, 0
}
