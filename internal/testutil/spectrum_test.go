package testutil

import (
	"math"
	"testing"
)

func TestMagnitudeSpectrumPeakBin(t *testing.T) {
	const (
		n    = 1024
		rate = 256.0
		freq = 16.0
	)
	x := DeterministicSine(freq, rate, 1.0, n)
	spec := MagnitudeSpectrum(t, x)
	if len(spec) != n/2 {
		t.Fatalf("len = %d, want %d", len(spec), n/2)
	}

	idx, peak := PeakBin(spec)
	wantBin := int(math.Round(freq * n / rate))
	if idx != wantBin {
		t.Fatalf("peak bin = %d, want %d", idx, wantBin)
	}
	if peak <= 0 {
		t.Fatalf("peak magnitude = %v, want > 0", peak)
	}

	// A whole-bin sine should stand far above the off-bin floor.
	for i, v := range spec {
		if i >= wantBin-1 && i <= wantBin+1 {
			continue
		}
		if v > peak/100 {
			t.Fatalf("bin %d magnitude %v not well below peak %v", i, v, peak)
		}
	}
}

func TestMagnitudeSpectrumZeroInput(t *testing.T) {
	spec := MagnitudeSpectrum(t, make([]float64, 64))
	for i, v := range spec {
		if v != 0 {
			t.Fatalf("bin %d = %v, want 0 for silent input", i, v)
		}
	}
}
