// Package leader computes wavelet-leader multifractal features from
// fixed-rate signal windows.
//
// The extractor runs a dyadic filter-bank pyramid over the input. At every
// octave scale it keeps the high-pass detail coefficients, forms wavelet
// leaders (sliding maxima of detail magnitudes combined across scales) and
// records three magnitude summaries per scale. Log-cumulants of the leaders
// are regressed against scale index with a weighted least-squares fit, and
// the three slopes together with the retained per-scale summaries form the
// feature vector.
//
// Boundary samples contaminated by filter transients are discarded before
// any statistic is computed. The whole computation is a pure function of
// the input window.
package leader
