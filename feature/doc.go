// Package feature stores per-epoch feature vectors and post-processes them
// across the whole recording.
//
// The Tensor is a dense [channel][epoch][feature] block whose rows can be
// filled concurrently. Post-processing walks every (channel, feature)
// column along the epoch axis: quarantine of non-finite vectors, detrended
// Tukey-fence outlier rejection, centered smoothing, night-referenced
// z-scoring and a discriminability score per column. Missing values travel
// as NaN through every stage.
package feature
