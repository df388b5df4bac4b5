// Package fir provides a direct-form FIR filter runtime.
//
// A [Filter] applies a set of pre-computed coefficients to an input stream
// using a circular-buffer delay line. The one-shot helpers [Causal] and
// [Compensated] cover block-at-a-time filtering where every block starts
// from a cleared state, which is how the conversion cascade and the wavelet
// filter bank consume it.
//
// This package provides the processing runtime only. Coefficient sets live
// with their consumers (dsp/resample, dsp/leader).
package fir
