package resample

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cwbudde/algo-vecmath"

	"github.com/mbrezny/sleepfeat/dsp/fir"
)

// CanonicalRate is the output rate of every conversion plan, in Hz.
const CanonicalRate = 256.0

// ErrUnsupportedRate indicates a source rate with no conversion plan.
var ErrUnsupportedRate = errors.New("resample: unsupported source rate")

// Stage is one interpolate/filter/decimate pass of a conversion cascade.
// Interp is the zero-stuff factor (1 means no interpolation) and Decim the
// decimation factor; the stage filter runs between the two.
type Stage struct {
	Interp int
	Decim  int
}

// plans maps each supported source rate to its cascade. Factors compound
// exactly onto CanonicalRate: 2000 -> 400 -> 320 -> 256 and
// 5000 -> 1000 -> 400 -> 320 -> 256.
var plans = map[float64][]Stage{
	2000: {{1, 5}, {4, 5}, {4, 5}},
	5000: {{1, 5}, {2, 5}, {4, 5}, {4, 5}},
}

// SupportedRates returns the source rates with a registered plan, ascending.
func SupportedRates() []float64 {
	out := make([]float64, 0, len(plans))
	for rate := range plans {
		out = append(out, rate)
	}
	sort.Float64s(out)
	return out
}

type config struct {
	taps   []float64
	stages []Stage
}

// Option configures a [Converter].
type Option func(*config)

// WithFilterTaps replaces the stage filter coefficients. The set must have
// odd length of at least 3 so the group-delay compensation stays
// sample-aligned; invalid sets are ignored.
func WithFilterTaps(taps []float64) Option {
	return func(cfg *config) {
		if len(taps) >= 3 && len(taps)%2 == 1 {
			cfg.taps = append([]float64(nil), taps...)
		}
	}
}

// WithStages overrides the cascade plan looked up from the source rate.
// Every factor must be positive and at least one stage must be given;
// invalid plans are ignored.
func WithStages(stages []Stage) Option {
	return func(cfg *config) {
		if len(stages) == 0 {
			return
		}
		for _, st := range stages {
			if st.Interp < 1 || st.Decim < 1 {
				return
			}
		}
		cfg.stages = append([]Stage(nil), stages...)
	}
}

// Converter resamples signal blocks from one supported source rate to the
// canonical rate. It holds no state across calls: identical input yields
// bit-identical output.
type Converter struct {
	sourceRate float64
	taps       []float64
	stages     []Stage
}

// New creates a converter for the given source rate. Rates without a plan
// fail with [ErrUnsupportedRate] unless [WithStages] supplies one.
func New(sourceRate float64, opts ...Option) (*Converter, error) {
	cfg := config{taps: antiAliasTaps}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.stages == nil {
		stages, ok := plans[sourceRate]
		if !ok {
			return nil, fmt.Errorf("%w: %g Hz", ErrUnsupportedRate, sourceRate)
		}
		cfg.stages = stages
	}

	return &Converter{
		sourceRate: sourceRate,
		taps:       cfg.taps,
		stages:     append([]Stage(nil), cfg.stages...),
	}, nil
}

// SourceRate returns the configured source rate in Hz.
func (c *Converter) SourceRate() float64 {
	return c.sourceRate
}

// Stages returns a copy of the cascade plan.
func (c *Converter) Stages() []Stage {
	return append([]Stage(nil), c.stages...)
}

// Ratio returns the compounded interpolation and decimation factors.
func (c *Converter) Ratio() (up, down int) {
	up, down = 1, 1
	for _, st := range c.stages {
		up *= st.Interp
		down *= st.Decim
	}
	return up, down
}

// OutputLen returns the output length Process produces for an input of
// length n.
func (c *Converter) OutputLen(n int) int {
	for _, st := range c.stages {
		n *= st.Interp
		n = (n + st.Decim - 1) / st.Decim
	}
	return n
}

// Process converts one channel to the canonical rate. The input slice is
// not modified.
func (c *Converter) Process(x []float64) []float64 {
	cur := x
	for _, st := range c.stages {
		if st.Interp > 1 {
			cur = ZeroStuff(cur, st.Interp)
		}
		cur = fir.Compensated(c.taps, cur)
		cur = Decimate(cur, st.Decim)
	}
	return cur
}

// ProcessBlock converts each channel of a block independently.
func (c *Converter) ProcessBlock(block [][]float64) [][]float64 {
	out := make([][]float64, len(block))
	for i, ch := range block {
		out[i] = c.Process(ch)
	}
	return out
}

// ZeroStuff interpolates by inserting factor-1 zeros after every sample and
// scaling by factor, so the mean level survives the following low-pass
// stage. A factor of 1 or less returns a copy.
func ZeroStuff(x []float64, factor int) []float64 {
	if factor <= 1 {
		return append([]float64(nil), x...)
	}
	out := make([]float64, len(x)*factor)
	for i, v := range x {
		out[i*factor] = v
	}
	vecmath.ScaleBlockInPlace(out, float64(factor))
	return out
}

// Decimate keeps every factor-th sample starting with the first. The output
// length is ceil(len(x)/factor).
func Decimate(x []float64, factor int) []float64 {
	if factor <= 1 {
		return append([]float64(nil), x...)
	}
	out := make([]float64, (len(x)+factor-1)/factor)
	for i := range out {
		out[i] = x[i*factor]
	}
	return out
}
