// Package resample converts signal blocks from a fixed set of acquisition
// rates to the 256 Hz canonical rate used by feature extraction.
//
// Conversion runs as a cascade of zero-stuff interpolation, low-pass
// filtering with group-delay compensation, and decimation stages whose
// factors compound exactly onto the canonical rate. A single 55-tap
// symmetric FIR serves every stage, handling both anti-alias and anti-image
// duty. The cascade is a deterministic linear operation: identical input
// produces bit-identical output, and a source rate without a registered
// plan fails fast with [ErrUnsupportedRate] instead of falling back to a
// generic ratio.
package resample
