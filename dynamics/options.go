package dynamics

import "github.com/katalvlaran/trafficsim/core"

// OptimizerMode selects how the traffic-light optimizer scales its
// green/red shift (spec.md §4.5 "Traffic-light optimizer" step 5).
type OptimizerMode int

const (
	// SingleTail applies the raw computed shift Δ unconditionally.
	SingleTail OptimizerMode = iota
	// DoubleTail additionally scales the shift by
	// tanh(globalDensity/localDensity) * densityTolerance, where
	// localDensity is the mean density of the light's configured incoming
	// streets. The scaling applies to every light whose localDensity is
	// positive; no density-cluster boundary test is made.
	DoubleTail
)

// Options configures a RoadDynamics at construction time, mirroring the
// teacher's functional-Option-over-a-plain-struct shape.
type Options struct {
	Seed int64

	// ErrorProbability is the chance a non-random agent ignores its
	// itinerary at a next-street choice (spec.md §6).
	ErrorProbability float64
	// PassageProbability gates stop-line release each attempt; a random
	// agent that fails the gate is treated as having arrived (spec.md §4.5
	// Stage A, §9 Open Question 3).
	PassageProbability float64
	// MinSpeedRatio is σ in the density-to-speed relation (spec.md §4.2).
	MinSpeedRatio float64
	// SpeedFluctuationStd is the relative stdev of assigned speed.
	SpeedFluctuationStd float64
	// MaxFlowPercentage caps per-tick street/node throughput as a fraction
	// of TransportCapacity, in (0, 1].
	MaxFlowPercentage float64
	// DataUpdatePeriod is the tick interval between tail samples and the
	// cadence of the traffic-light optimizer.
	DataUpdatePeriod core.Time
	// ForcePriorities, when set, makes an intersection that cannot release
	// its head pending agent release nothing at all this tick, rather than
	// trying the next pending agent (spec.md §4.5 Stage B).
	ForcePriorities bool

	// OptimizerThreshold and OptimizerDensityTolerance parameterize the
	// traffic-light optimizer (spec.md §4.5).
	OptimizerThreshold        float64
	OptimizerDensityTolerance float64
	OptimizerMode             OptimizerMode
}

// Option is a functional option over Options.
type Option func(*Options)

// WithSeed sets the PRNG seed.
func WithSeed(seed int64) Option { return func(o *Options) { o.Seed = seed } }

// WithErrorProbability sets the itinerary-ignoring probability; New clamps
// it to [0, 1].
func WithErrorProbability(p float64) Option { return func(o *Options) { o.ErrorProbability = p } }

// WithPassageProbability sets the stop-line release gate probability.
func WithPassageProbability(p float64) Option { return func(o *Options) { o.PassageProbability = p } }

// WithMinSpeedRatio sets σ in the density-to-speed relation.
func WithMinSpeedRatio(r float64) Option { return func(o *Options) { o.MinSpeedRatio = r } }

// WithSpeedFluctuationStd sets the relative stdev of assigned speed.
func WithSpeedFluctuationStd(s float64) Option {
	return func(o *Options) { o.SpeedFluctuationStd = s }
}

// WithMaxFlowPercentage caps per-tick throughput as a fraction of each
// street/node's configured transport capacity.
func WithMaxFlowPercentage(p float64) Option { return func(o *Options) { o.MaxFlowPercentage = p } }

// WithDataUpdatePeriod sets the tick interval between optimizer runs.
func WithDataUpdatePeriod(p core.Time) Option { return func(o *Options) { o.DataUpdatePeriod = p } }

// WithForcePriorities enables the force-priorities intersection release
// policy.
func WithForcePriorities() Option { return func(o *Options) { o.ForcePriorities = true } }

// WithOptimizerThreshold sets the optimizer's relative-imbalance threshold.
func WithOptimizerThreshold(t float64) Option {
	return func(o *Options) { o.OptimizerThreshold = t }
}

// WithOptimizerDensityTolerance sets the optimizer's DoubleTail scaling
// tolerance.
func WithOptimizerDensityTolerance(t float64) Option {
	return func(o *Options) { o.OptimizerDensityTolerance = t }
}

// WithOptimizerMode selects SingleTail or DoubleTail scaling.
func WithOptimizerMode(m OptimizerMode) Option { return func(o *Options) { o.OptimizerMode = m } }

// DefaultOptions returns sensible defaults: no itinerary error, full
// passage, no density speed penalty, no fluctuation, unthrottled flow, a
// 10-tick optimizer cadence, priorities not forced, and an optimizer
// threshold of 0.1 and density tolerance of 0.5 in SingleTail mode.
func DefaultOptions() Options {
	return Options{
		Seed:                      1,
		ErrorProbability:          0,
		PassageProbability:        1,
		MinSpeedRatio:             0,
		SpeedFluctuationStd:       0,
		MaxFlowPercentage:         1,
		DataUpdatePeriod:          10,
		ForcePriorities:           false,
		OptimizerThreshold:        0.1,
		OptimizerDensityTolerance: 0.5,
		OptimizerMode:             SingleTail,
	}
}
