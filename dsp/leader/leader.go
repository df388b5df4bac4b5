package leader

import "math"

const (
	// DefaultScales is the number of octave scales of the pyramid.
	DefaultScales = 8

	// DefaultSignalRate is the sample rate the boundary trims assume, in Hz.
	DefaultSignalRate = 256.0
)

type config struct {
	taps        []float64
	rate        float64
	scales      int
	excluded    []int
	hasExcluded bool
	bandLo      int
	bandHi      int
}

// Option configures an [Extractor].
type Option func(*config)

// WithScalingTaps replaces the scaling filter. The set must have even
// length of at least 4; invalid sets are ignored.
func WithScalingTaps(taps []float64) Option {
	return func(cfg *config) {
		if len(taps) >= 4 && len(taps)%2 == 0 {
			cfg.taps = append([]float64(nil), taps...)
		}
	}
}

// WithSignalRate sets the input sample rate the boundary trims are derived
// from. Rates at or below zero are ignored.
func WithSignalRate(rate float64) Option {
	return func(cfg *config) {
		if rate > 0 {
			cfg.rate = rate
		}
	}
}

// WithScales sets the number of octave scales. Values outside [1, 30] are
// ignored.
func WithScales(scales int) Option {
	return func(cfg *config) {
		if scales >= 1 && scales <= 30 {
			cfg.scales = scales
		}
	}
}

// WithExcludedScales sets the scale indices whose summaries are dropped
// from the feature vector. Passing nil keeps every scale. Indices outside
// the configured scale range are ignored.
func WithExcludedScales(scales []int) Option {
	return func(cfg *config) {
		cfg.excluded = append([]int(nil), scales...)
		cfg.hasExcluded = true
	}
}

// WithRegressionBand sets the inclusive scale-index range the cumulant
// slopes are fitted over. Invalid ranges are ignored.
func WithRegressionBand(lo, hi int) Option {
	return func(cfg *config) {
		if lo >= 0 && lo <= hi {
			cfg.bandLo = lo
			cfg.bandHi = hi
		}
	}
}

// Extractor turns one canonical-rate signal window into a multifractal
// feature vector. It is stateless and safe for concurrent use.
type Extractor struct {
	scaling  []float64
	wavelet  []float64
	rate     float64
	scales   int
	excluded []bool
	bandLo   int
	bandHi   int
}

// New creates an extractor. Without options it uses the Daubechies-5
// filter bank over 8 octave scales at 256 Hz, fits the cumulant slopes
// over scales 1..5 and excludes the summaries of the two finest scales.
func New(opts ...Option) *Extractor {
	cfg := config{
		taps:   scalingTaps,
		rate:   DefaultSignalRate,
		scales: DefaultScales,
		bandLo: 1,
		bandHi: 5,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if !cfg.hasExcluded {
		cfg.excluded = []int{0, 1}
	}

	e := &Extractor{
		scaling:  append([]float64(nil), cfg.taps...),
		wavelet:  waveletFrom(cfg.taps),
		rate:     cfg.rate,
		scales:   cfg.scales,
		excluded: make([]bool, cfg.scales),
		bandLo:   cfg.bandLo,
		bandHi:   cfg.bandHi,
	}
	for _, s := range cfg.excluded {
		if s >= 0 && s < e.scales {
			e.excluded[s] = true
		}
	}

	if e.bandHi > e.scales-1 {
		e.bandHi = e.scales - 1
	}
	if e.bandLo > e.bandHi {
		e.bandLo, e.bandHi = 0, e.scales-1
	}

	return e
}

// Scales returns the number of octave scales.
func (e *Extractor) Scales() int {
	return e.scales
}

// SignalRate returns the assumed input sample rate in Hz.
func (e *Extractor) SignalRate() float64 {
	return e.rate
}

// RegressionBand returns the inclusive scale-index range of the slope fit.
func (e *Extractor) RegressionBand() (lo, hi int) {
	return e.bandLo, e.bandHi
}

// ExcludedScales returns the scale indices whose summaries are dropped,
// ascending.
func (e *Extractor) ExcludedScales() []int {
	out := make([]int, 0, len(e.excluded))
	for s, drop := range e.excluded {
		if drop {
			out = append(out, s)
		}
	}
	return out
}

// SummaryLen returns the number of per-scale summaries before exclusion.
func (e *Extractor) SummaryLen() int {
	return 3 * e.scales
}

// FeatureLen returns the length of the vector Extract produces.
func (e *Extractor) FeatureLen() int {
	kept := e.scales
	for _, drop := range e.excluded {
		if drop {
			kept--
		}
	}
	return 3 + 3*kept
}

// TrimBounds returns the half-open range [lo, hi) of a length-n coefficient
// sequence at the given scale that survives the boundary trim. The range is
// empty when the sequence is too short to clear the filter transients.
func (e *Extractor) TrimBounds(n, scale int) (lo, hi int) {
	edge := int(math.Ceil(e.rate / float64(int(1)<<(scale+1))))
	nd := len(e.scaling) / 2

	lo = nd - 1 + edge
	tail := edge - nd - 1
	if tail < 0 {
		tail = 0
	}
	hi = n - 1 - tail

	if lo > n {
		lo = n
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
