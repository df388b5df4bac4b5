package testutil

import (
	"testing"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// MagnitudeSpectrum returns |X[k]| for k in [0, len(x)/2) of the DFT of x.
// The input length must be a power of two. Used to verify passband gain and
// stopband rejection of conversion stages against known tone placements.
func MagnitudeSpectrum(t *testing.T, x []float64) []float64 {
	t.Helper()

	n := len(x)
	if n == 0 || n&(n-1) != 0 {
		t.Fatalf("spectrum length must be a power of two, got %d", n)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		t.Fatalf("fft plan: %v", err)
	}

	buf := make([]complex128, n)
	for i, v := range x {
		buf[i] = complex(v, 0)
	}

	if err := plan.Forward(buf, buf); err != nil {
		t.Fatalf("fft forward: %v", err)
	}

	half := n / 2
	re := make([]float64, half)
	im := make([]float64, half)
	for i := range half {
		re[i] = real(buf[i])
		im[i] = imag(buf[i])
	}

	out := make([]float64, half)
	vecmath.Magnitude(out, re, im)
	return out
}

// PeakBin returns the index and value of the largest magnitude in spec.
func PeakBin(spec []float64) (int, float64) {
	idx := 0
	peak := 0.0
	for i, v := range spec {
		if v > peak {
			peak = v
			idx = i
		}
	}
	return idx, peak
}
