package resample

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-vecmath"

	"github.com/mbrezny/sleepfeat/internal/testutil"
)

func TestNewUnsupportedRate(t *testing.T) {
	_, err := New(1234)
	if !errors.Is(err, ErrUnsupportedRate) {
		t.Fatalf("New(1234) error = %v, want ErrUnsupportedRate", err)
	}
}

func TestSupportedRates(t *testing.T) {
	rates := SupportedRates()
	want := []float64{2000, 5000}

	if len(rates) != len(want) {
		t.Fatalf("SupportedRates() = %v, want %v", rates, want)
	}
	for i, r := range rates {
		if r != want[i] {
			t.Errorf("SupportedRates()[%d] = %g, want %g", i, r, want[i])
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		rate     float64
		up, down int
	}{
		{2000, 16, 125},
		{5000, 32, 625},
	}

	for _, tt := range tests {
		conv, err := New(tt.rate)
		if err != nil {
			t.Fatalf("New(%g) error: %v", tt.rate, err)
		}

		up, down := conv.Ratio()
		if up != tt.up || down != tt.down {
			t.Errorf("Ratio() for %g Hz = %d/%d, want %d/%d", tt.rate, up, down, tt.up, tt.down)
		}
		if got := tt.rate * float64(up) / float64(down); got != CanonicalRate {
			t.Errorf("%g Hz * %d/%d = %g, want %g", tt.rate, up, down, got, CanonicalRate)
		}
	}
}

func TestOutputLen(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		in   int
		want int
	}{
		{"2000Hz window", 2000, 65000, 8320},
		{"5000Hz window", 5000, 162500, 8320},
		{"2000Hz long", 2000, 69000, 8832},
		{"2000Hz short", 2000, 1000, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := New(tt.rate)
			if err != nil {
				t.Fatalf("New(%g) error: %v", tt.rate, err)
			}
			if got := conv.OutputLen(tt.in); got != tt.want {
				t.Fatalf("OutputLen(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestProcessLengthMatchesOutputLen(t *testing.T) {
	conv, err := New(2000)
	if err != nil {
		t.Fatalf("New(2000) error: %v", err)
	}

	for _, n := range []int{1, 7, 999, 65000, 65003} {
		x := testutil.DeterministicNoise(42, 1.0, n)
		out := conv.Process(x)
		if len(out) != conv.OutputLen(n) {
			t.Fatalf("len(Process) = %d for input %d, want %d", len(out), n, conv.OutputLen(n))
		}
	}
}

func TestProcessZeroInput(t *testing.T) {
	conv, err := New(2000)
	if err != nil {
		t.Fatalf("New(2000) error: %v", err)
	}

	out := conv.Process(make([]float64, 65000))
	if len(out) != 8320 {
		t.Fatalf("len(Process) = %d, want 8320", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %g, want 0", i, v)
		}
	}
}

func TestProcessDCGain(t *testing.T) {
	conv, err := New(2000)
	if err != nil {
		t.Fatalf("New(2000) error: %v", err)
	}

	out := conv.Process(testutil.Ones(65000))

	// Each stage multiplies a constant level by the tap sum on average,
	// so the cascade settles near the cubed sum.
	gain := math.Pow(vecmath.Sum(FilterTaps()), 3)
	if math.Abs(gain-1) > 0.01 {
		t.Fatalf("cascade DC gain = %g, want close to 1", gain)
	}

	var sum float64
	for i := 1000; i < 7000; i++ {
		if math.Abs(out[i]-1) > 0.01 {
			t.Fatalf("out[%d] = %g, want within 0.01 of 1", i, out[i])
		}
		sum += out[i]
	}
	mean := sum / 6000
	if math.Abs(mean-gain) > 1e-4 {
		t.Fatalf("interior mean = %g, want %g within 1e-4", mean, gain)
	}
}

func TestProcessToneSurvives(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		in   int
	}{
		{"2000Hz", 2000, 65000},
		{"5000Hz", 5000, 162500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := New(tt.rate)
			if err != nil {
				t.Fatalf("New(%g) error: %v", tt.rate, err)
			}

			out := conv.Process(testutil.DeterministicSine(5, tt.rate, 1.0, tt.in))
			if len(out) != 8320 {
				t.Fatalf("len(Process) = %d, want 8320", len(out))
			}

			want := testutil.DeterministicSine(5, CanonicalRate, 1.0, 8320)
			for i := 1000; i < 7000; i++ {
				if math.Abs(out[i]-want[i]) > 0.03 {
					t.Fatalf("out[%d] = %g, want %g within 0.03", i, out[i], want[i])
				}
			}
		})
	}
}

func TestProcessRejectsImages(t *testing.T) {
	conv, err := New(2000)
	if err != nil {
		t.Fatalf("New(2000) error: %v", err)
	}

	out := conv.Process(testutil.DeterministicSine(30, 2000, 1.0, 69000))
	if len(out) != 8832 {
		t.Fatalf("len(Process) = %d, want 8832", len(out))
	}

	// A 30 Hz tone lands on bin 960 of an 8192-point window at 256 Hz.
	// Interpolation images and aliases must stay far below it.
	spec := testutil.MagnitudeSpectrum(t, out[320:8512])
	peakBin, peak := testutil.PeakBin(spec)
	if peakBin != 960 {
		t.Fatalf("peak at bin %d, want 960", peakBin)
	}
	for bin, v := range spec {
		if bin >= 952 && bin <= 968 {
			continue
		}
		if v > peak*0.02 {
			t.Fatalf("bin %d magnitude %g exceeds 2%% of peak %g", bin, v, peak)
		}
	}
}

func TestProcessDeterministic(t *testing.T) {
	conv, err := New(2000)
	if err != nil {
		t.Fatalf("New(2000) error: %v", err)
	}

	x := testutil.NoisySine(12, 2000, 1.0, 0.25, 7, 65000)
	a := conv.Process(x)
	b := conv.Process(x)

	if len(a) != len(b) {
		t.Fatalf("run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("out[%d] differs between runs: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	conv, err := New(2000)
	if err != nil {
		t.Fatalf("New(2000) error: %v", err)
	}

	x := testutil.NoisySine(12, 2000, 1.0, 0.25, 7, 10000)
	orig := append([]float64(nil), x...)
	conv.Process(x)

	for i := range x {
		if x[i] != orig[i] {
			t.Fatalf("input[%d] changed from %g to %g", i, orig[i], x[i])
		}
	}
}

func TestProcessBlock(t *testing.T) {
	conv, err := New(2000)
	if err != nil {
		t.Fatalf("New(2000) error: %v", err)
	}

	block := [][]float64{
		testutil.DeterministicSine(5, 2000, 1.0, 10000),
		testutil.DeterministicNoise(3, 0.5, 10000),
	}
	out := conv.ProcessBlock(block)

	if len(out) != 2 {
		t.Fatalf("len(ProcessBlock) = %d, want 2", len(out))
	}
	for ch := range out {
		want := conv.Process(block[ch])
		testutil.RequireSliceNearlyEqual(t, out[ch], want, 0)
	}
}

func TestNewWithStagesOverride(t *testing.T) {
	// A pure one-sample-delay filter with a single decimation stage keeps
	// every other sample untouched.
	conv, err := New(512, WithStages([]Stage{{1, 2}}), WithFilterTaps([]float64{0, 1, 0}))
	if err != nil {
		t.Fatalf("New with stage override error: %v", err)
	}

	out := conv.Process([]float64{0, 1, 2, 3, 4, 5, 6, 7})
	want := []float64{0, 2, 4, 6}
	testutil.RequireSliceNearlyEqual(t, out, want, 1e-15)
}

func TestOptionGuards(t *testing.T) {
	conv, err := New(2000,
		WithFilterTaps([]float64{1, 2}),
		WithStages(nil),
		WithStages([]Stage{{0, 5}}),
	)
	if err != nil {
		t.Fatalf("New(2000) error: %v", err)
	}

	if got := len(conv.Stages()); got != 3 {
		t.Fatalf("len(Stages()) = %d, want the 3-stage default plan", got)
	}
	if got := len(FilterTaps()); got != 55 {
		t.Fatalf("len(FilterTaps()) = %d, want 55", got)
	}
}

func TestZeroStuff(t *testing.T) {
	out := ZeroStuff([]float64{1, 2}, 4)
	want := []float64{4, 0, 0, 0, 8, 0, 0, 0}
	testutil.RequireSliceNearlyEqual(t, out, want, 0)

	copied := ZeroStuff([]float64{3, 4}, 1)
	testutil.RequireSliceNearlyEqual(t, copied, []float64{3, 4}, 0)
}

func TestDecimate(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	out := Decimate(x, 5)
	testutil.RequireSliceNearlyEqual(t, out, []float64{0, 5, 10}, 0)

	copied := Decimate(x[:3], 1)
	testutil.RequireSliceNearlyEqual(t, copied, []float64{0, 1, 2}, 0)
}

func BenchmarkProcess2000(b *testing.B) {
	conv, err := New(2000)
	if err != nil {
		b.Fatal(err)
	}
	x := testutil.NoisySine(10, 2000, 1.0, 0.1, 1, 65000)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		conv.Process(x)
	}
}
