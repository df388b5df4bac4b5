package leader

// scalingTaps is the Daubechies-5 scaling (low-pass) filter driving the
// dyadic pyramid.
var scalingTaps = []float64{
	0.22641898,
	0.85394354,
	1.02432694,
	0.19576696,
	-0.34265671,
	-0.04560113,
	0.10970265,
	-0.0088268,
	-0.01779187,
	0.00471742793,
}

// ScalingTaps returns a copy of the default scaling filter coefficients.
func ScalingTaps() []float64 {
	return append([]float64(nil), scalingTaps...)
}

// WaveletTaps returns the high-pass counterpart of the default scaling
// filter.
func WaveletTaps() []float64 {
	return waveletFrom(scalingTaps)
}

// waveletFrom derives the quadrature mirror high-pass from a scaling
// filter: time reversal with alternating signs.
func waveletFrom(taps []float64) []float64 {
	out := make([]float64, len(taps))
	for n := range out {
		v := taps[len(taps)-1-n]
		if n%2 == 1 {
			v = -v
		}
		out[n] = v
	}
	return out
}
