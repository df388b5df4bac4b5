// Package conv provides linear convolution with numpy-compatible output modes.
//
// Two strategies are offered:
//
//   - Direct convolution: O(N*M) time-domain convolution, best for short
//     kernels (< 64 samples). This covers every kernel in this module: the
//     moving-average windows (3 and 10 taps) and the conversion filters
//     (10 and 55 taps).
//   - Overlap-add: FFT-based block convolution for long kernels, kept for
//     callers that convolve against measured responses.
//
// [Convolve] selects between them by kernel length; [ConvolveMode] applies
// an output mode on top:
//
//	full, err := conv.Convolve(signal, kernel)
//	same, err := conv.ConvolveMode(signal, kernel, conv.ModeSame)
//
// ModeSame centers the result on the first input, matching numpy's 'same'
// semantics (start offset (len(kernel)-1)/2, zero-padded edges). The robust
// statistics built on top depend on that exact alignment.
package conv
