package pipeline

import "time"

// AlignStart returns the offset in seconds from the recording start to the
// first epoch boundary. Epochs are anchored to half-minute marks of the
// wall clock, shifted one second early so that the pre-epoch overlap read
// never reaches before the recording: with sec the seconds-within-minute
// of the start time (UTC), the offset is 29-sec when sec < 29-overlap,
// 59-sec when sec < 59-overlap and 89-sec otherwise.
func AlignStart(start time.Time, overlapSec float64) float64 {
	utc := start.UTC()
	sec := float64(utc.Second()) + float64(utc.Nanosecond())/1e9

	switch {
	case sec < 29-overlapSec:
		return 29 - sec
	case sec < 59-overlapSec:
		return 59 - sec
	default:
		return 60 - sec + 29
	}
}
