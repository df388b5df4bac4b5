// Package robust provides order statistics and masked moments for feature
// series that carry NaN as a missing-value marker.
package robust

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/stat"

	"github.com/mbrezny/sleepfeat/dsp/conv"
)

// MovingAverageSame returns the centered moving average of x. The window
// sum at each position is divided by the full window length, so positions
// near the edges average in implicit zeros. Windows of one or less return
// a copy.
func MovingAverageSame(x []float64, window int) []float64 {
	if len(x) == 0 {
		return nil
	}
	if window <= 1 {
		return append([]float64(nil), x...)
	}

	kernel := make([]float64, window)
	for i := range kernel {
		kernel[i] = 1
	}

	out, err := conv.ConvolveMode(x, kernel, conv.ModeSame)
	if err != nil {
		return nil
	}
	vecmath.ScaleBlockInPlace(out, 1/float64(window))
	return out
}

// Quartiles returns the lower and upper quartiles of x, taken directly
// from the sorted values at the round-half-even positions 0.25n and 0.75n
// (clamped to the last element). Empty input yields NaN quartiles. The
// input is not modified.
func Quartiles(x []float64) (q1, q3 float64) {
	n := len(x)
	if n == 0 {
		return math.NaN(), math.NaN()
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	i1 := quartileIndex(0.25, n)
	i3 := quartileIndex(0.75, n)
	return sorted[i1], sorted[i3]
}

func quartileIndex(q float64, n int) int {
	i := int(math.RoundToEven(q * float64(n)))
	if i > n-1 {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// FenceBounds returns the Tukey fence [lo, hi] of x: the quartiles pushed
// outward by k times the interquartile range. Values outside the fence are
// outliers. Empty input yields NaN bounds, which no value compares outside
// of.
func FenceBounds(x []float64, k float64) (lo, hi float64) {
	q1, q3 := Quartiles(x)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}

// Compact returns the non-NaN values of x, keeping order. A non-nil mask
// restricts the selection to positions where it is true.
func Compact(x []float64, mask []bool) []float64 {
	out := make([]float64, 0, len(x))
	for i, v := range x {
		if mask != nil && !mask[i] {
			continue
		}
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// MaskedMoments returns the mean and population standard deviation of the
// non-NaN entries of x selected by mask (nil selects all). An empty
// selection yields NaN moments.
func MaskedMoments(x []float64, mask []bool) (mean, std float64) {
	vals := Compact(x, mask)
	if len(vals) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.Mean(vals, nil), stat.PopStdDev(vals, nil)
}

// AllFinite reports whether x contains neither NaN nor infinities.
func AllFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
