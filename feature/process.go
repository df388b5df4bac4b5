package feature

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/mbrezny/sleepfeat/stats/robust"
)

// ErrMaskLength reports a night mask whose length differs from the visible
// epoch count.
var ErrMaskLength = errors.New("feature: night mask length mismatch")

const (
	// detrendWindow is the moving-average span used both to detrend a
	// column before outlier detection and to smooth it for the
	// discriminability score.
	detrendWindow = 10

	// smoothWindow is the moving-average span applied to surviving
	// values after outlier rejection.
	smoothWindow = 3

	// fenceMultiplier scales the interquartile range into the Tukey
	// rejection fence.
	fenceMultiplier = 2.5
)

// Quarantine replaces every visible (channel, epoch) vector that contains a
// NaN or infinity with an all-NaN vector, so that a single corrupt value
// never leaks into column statistics. It returns the number of vectors that
// are fully missing afterwards.
func Quarantine(t *Tensor) int {
	nan := math.NaN()
	count := 0
	for ch := range t.Channels() {
		for e := range t.Epochs() {
			row := t.Row(ch, e)
			if robust.AllFinite(row) {
				continue
			}
			for i := range row {
				row[i] = nan
			}
			count++
		}
	}
	return count
}

// Process post-processes the tensor in place and returns the per-column
// discriminability scores as a [channel][feature] matrix.
//
// After an implicit Quarantine pass, each (channel, feature) column runs
// through outlier rejection on its detrended values, moving-average
// smoothing of the survivors and a z-score normalization anchored on the
// epochs selected by the night mask. A nil mask selects every epoch; a
// non-nil mask must cover exactly the visible epochs.
func Process(t *Tensor, night []bool) ([][]float64, error) {
	if night != nil && len(night) != t.Epochs() {
		return nil, fmt.Errorf("%w: mask %d, epochs %d", ErrMaskLength, len(night), t.Epochs())
	}
	Quarantine(t)

	scores := make([][]float64, t.Channels())
	for ch := range scores {
		scores[ch] = make([]float64, t.Features())
		for f := range t.Features() {
			col := t.Column(ch, f)
			rejectOutliers(col)
			smooth(col)
			normalize(col, night)
			t.SetColumn(ch, f, col)
			scores[ch][f] = discriminability(col)
		}
	}
	return scores, nil
}

// rejectOutliers marks values as missing when their detrended magnitude
// falls outside the Tukey fence. The trend is a moving average over the
// present values only, so missing entries do not drag it toward zero.
func rejectOutliers(col []float64) {
	vals := robust.Compact(col, nil)
	if len(vals) == 0 {
		return
	}
	trend := robust.MovingAverageSame(vals, detrendWindow)
	detr := make([]float64, len(vals))
	for i := range vals {
		detr[i] = vals[i] - trend[i]
	}
	lo, hi := robust.FenceBounds(detr, fenceMultiplier)

	k := 0
	for i, v := range col {
		if math.IsNaN(v) {
			continue
		}
		if detr[k] < lo || detr[k] > hi {
			col[i] = math.NaN()
		}
		k++
	}
}

// smooth replaces each present value with the moving average of the present
// series, leaving missing slots untouched.
func smooth(col []float64) {
	vals := robust.Compact(col, nil)
	if len(vals) == 0 {
		return
	}
	sm := robust.MovingAverageSame(vals, smoothWindow)

	k := 0
	for i, v := range col {
		if math.IsNaN(v) {
			continue
		}
		col[i] = sm[k]
		k++
	}
}

// normalize z-scores the whole column by the mean and population standard
// deviation of the night-masked entries. Columns that are identically zero
// are left alone so that untouched tensor slots stay zero instead of
// turning into NaN through a zero spread.
func normalize(col []float64, night []bool) {
	any := false
	for _, v := range col {
		if v != 0 {
			any = true
			break
		}
	}
	if !any {
		return
	}
	mean, std := robust.MaskedMoments(col, night)
	for i, v := range col {
		col[i] = (v - mean) / std
	}
}

// discriminability measures how much of a column's energy survives a
// 10-point moving average of its present values. Slowly varying columns
// score near 1, noise-dominated columns near 0.
func discriminability(col []float64) float64 {
	vals := robust.Compact(col, nil)
	if len(vals) == 0 {
		return 0
	}
	denom := floats.Norm(vals, 2)
	if denom == 0 {
		return 0
	}
	sm := robust.MovingAverageSame(vals, detrendWindow)
	return floats.Norm(sm, 2) / denom
}
