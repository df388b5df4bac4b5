package leader

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/stat"

	"github.com/mbrezny/sleepfeat/dsp/fir"
)

// Extract computes the feature vector of one signal window. The input is
// truncated to a multiple of 2^Scales samples and is not modified. Windows
// too short for the boundary trims yield NaN entries instead of an error.
func (e *Extractor) Extract(x []float64) []float64 {
	n := (len(x) >> e.scales) << e.scales
	cur := x[:n]

	summaries := make([]float64, 3*e.scales)
	cumulants := [3][]float64{
		make([]float64, e.scales),
		make([]float64, e.scales),
		make([]float64, e.scales),
	}
	counts := make([]float64, e.scales)

	var propagated []float64
	for j := range e.scales {
		detail := downsample2(fir.Causal(e.wavelet, cur))
		cur = downsample2(fir.Causal(e.scaling, cur))

		lo, hi := e.TrimBounds(len(detail), j)
		e.summarize(summaries, detail[lo:hi], j)

		lea := slidingMax3(detail)
		for i, v := range propagated {
			if v > lea[i] {
				lea[i] = v
			}
		}
		if j < e.scales-1 {
			propagated = pairwiseMax(lea)
		}

		u1, u2, u3 := logMoments(lea[lo:hi])
		cumulants[0][j] = u1
		cumulants[1][j] = u2 - u1*u1
		cumulants[2][j] = u3 - 3*u1*u2 + 2*u1*u1*u1
		counts[j] = float64(hi - lo)
	}

	out := make([]float64, 0, e.FeatureLen())
	out = append(out, e.slopes(cumulants, counts)...)
	for g := range 3 {
		for j := range e.scales {
			if e.excluded[j] {
				continue
			}
			out = append(out, summaries[g*e.scales+j])
		}
	}
	return out
}

// summarize records the three magnitude statistics of one scale's trimmed
// detail coefficients.
func (e *Extractor) summarize(dst, seg []float64, scale int) {
	if len(seg) == 0 {
		dst[scale] = math.NaN()
		dst[e.scales+scale] = math.NaN()
		dst[2*e.scales+scale] = math.NaN()
		return
	}

	mag := make([]float64, len(seg))
	for i, v := range seg {
		mag[i] = math.Abs(v)
	}

	dst[scale] = math.Log(stat.Mean(mag, nil))
	dst[e.scales+scale] = vecmath.DotProduct(seg, seg)
	dst[2*e.scales+scale] = math.Log(stat.PopStdDev(mag, nil))
}

// slopes fits each cumulant sequence against scale index over the
// regression band, weighted by surviving sample counts, and scales the
// slopes to base-2 logarithms.
func (e *Extractor) slopes(cumulants [3][]float64, counts []float64) []float64 {
	width := e.bandHi - e.bandLo + 1
	xs := make([]float64, width)
	ws := make([]float64, width)
	for i := range width {
		xs[i] = float64(e.bandLo + i + 1)
		ws[i] = counts[e.bandLo+i]
	}

	out := make([]float64, 3)
	for i, row := range cumulants {
		_, beta := stat.LinearRegression(xs, row[e.bandLo:e.bandHi+1], ws, false)
		out[i] = math.Log2E * beta
	}
	return out
}

// logMoments returns the first three raw moments of ln(x). An empty input
// yields NaN moments.
func logMoments(x []float64) (u1, u2, u3 float64) {
	if len(x) == 0 {
		nan := math.NaN()
		return nan, nan, nan
	}

	var s1, s2, s3 float64
	for _, v := range x {
		l := math.Log(v)
		s1 += l
		s2 += l * l
		s3 += l * l * l
	}
	n := float64(len(x))
	return s1 / n, s2 / n, s3 / n
}

// slidingMax3 returns the maximum detail magnitude over each 3-sample
// neighborhood, treating both ends as zero padded.
func slidingMax3(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		m := math.Abs(x[i])
		if i > 0 {
			m = math.Max(m, math.Abs(x[i-1]))
		}
		if i < len(x)-1 {
			m = math.Max(m, math.Abs(x[i+1]))
		}
		out[i] = m
	}
	return out
}

// pairwiseMax halves a sequence by taking the maximum of each adjacent
// sample pair.
func pairwiseMax(x []float64) []float64 {
	out := make([]float64, len(x)/2)
	for i := range out {
		out[i] = math.Max(x[2*i], x[2*i+1])
	}
	return out
}

// downsample2 keeps every second sample starting with the first.
func downsample2(x []float64) []float64 {
	out := make([]float64, (len(x)+1)/2)
	for i := range out {
		out[i] = x[2*i]
	}
	return out
}
