// Package pipeline orchestrates feature extraction over a whole recording.
//
// A run lists the source channels, derives the bipolar montage, aligns a
// 30-second epoch grid to the recording clock and then streams epochs
// through rate conversion and multifractal feature extraction into a dense
// feature tensor. One producer goroutine performs the source reads while a
// pool of workers converts and extracts; rows of the tensor are disjoint,
// so the workers never contend. After a barrier the tensor is post-
// processed column-wise and the run yields a Result.
//
// Failed epochs are logged, left missing in the tensor and counted; a run
// aborts once the count passes the configured limit. Cancelling the
// context stops producer and workers and returns the context's error.
package pipeline
