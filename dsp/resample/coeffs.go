package resample

// antiAliasTaps is the 55-tap symmetric low-pass FIR shared by every cascade
// stage. Its cutoff matches the decimate-by-5 stages, so the same set
// rejects aliases before decimation and spectral images after zero-stuff
// interpolation. Unity passband gain, odd length, integer group delay of 27
// samples.
var antiAliasTaps = []float64{
	-0.000413312132792, 0.000384910656353, 0.000895384486596, 0.001426584098180,
	0.001572675788393, 0.000956099017099, -0.000559378457343, -0.002678217568221,
	-0.004629975982837, -0.005358589238386, -0.003933117464092, -0.000059710059922,
	0.005521319363883, 0.010983495478404, 0.013840996082966, 0.011817315106321,
	0.003905283425021, -0.008768844009700, -0.022682212400564, -0.032498023687148,
	-0.032456772047175, -0.018225658085891, 0.011386634156651, 0.053456542440034,
	0.101168250947271, 0.145263694388270, 0.176384224234024, 0.187607302744229,
	0.176384224234024, 0.145263694388270, 0.101168250947271, 0.053456542440034,
	0.011386634156651, -0.018225658085891, -0.032456772047175, -0.032498023687148,
	-0.022682212400564, -0.008768844009700, 0.003905283425021, 0.011817315106321,
	0.013840996082966, 0.010983495478404, 0.005521319363883, -0.000059710059922,
	-0.003933117464092, -0.005358589238386, -0.004629975982837, -0.002678217568221,
	-0.000559378457343, 0.000956099017099, 0.001572675788393, 0.001426584098180,
	0.000895384486596, 0.000384910656353, -0.000413312132792,
}

// FilterTaps returns a copy of the default stage filter coefficients.
func FilterTaps() []float64 {
	out := make([]float64, len(antiAliasTaps))
	copy(out, antiAliasTaps)
	return out
}
