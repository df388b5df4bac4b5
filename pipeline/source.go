package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"
)

// ChannelInfo describes one recorded channel of a Source.
type ChannelInfo struct {
	// Name is the channel label as recorded.
	Name string

	// SampleRate is the sampling frequency in Hz.
	SampleRate float64

	// Samples is the total number of recorded samples.
	Samples int64

	// StartMicros is the recording start in microseconds since the Unix
	// epoch, UTC.
	StartMicros int64
}

// Source provides channel metadata and microsecond-aligned range reads
// over a recording.
type Source interface {
	// Channels lists the recorded channels in recording order.
	Channels(ctx context.Context) ([]ChannelInfo, error)

	// Read returns one slice per requested name covering
	// [startMicros, stopMicros). Each slice holds exactly
	// round((stop-start)*rate/1e6) samples; positions outside the
	// recorded range are NaN.
	Read(ctx context.Context, names []string, startMicros, stopMicros int64) ([][]float64, error)
}

// BufferSource serves in-memory channel data, mainly for synthetic
// recordings and tests. All channels share one start time and sample rate.
type BufferSource struct {
	startMicros int64
	rate        float64
	names       []string
	index       map[string]int
	data        [][]float64
}

// NewBufferSource wraps the given per-channel sample slices. Every channel
// carries the same start time and rate; the slices may differ in length.
func NewBufferSource(start time.Time, rate float64, names []string, data [][]float64) (*BufferSource, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("pipeline: buffer source rate %g Hz", rate)
	}
	if len(names) != len(data) {
		return nil, fmt.Errorf("pipeline: %d channel names for %d data slices", len(names), len(data))
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("pipeline: duplicate channel %q", name)
		}
		index[name] = i
	}
	return &BufferSource{
		startMicros: start.UnixMicro(),
		rate:        rate,
		names:       append([]string(nil), names...),
		index:       index,
		data:        data,
	}, nil
}

// Channels implements Source.
func (s *BufferSource) Channels(ctx context.Context) ([]ChannelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos := make([]ChannelInfo, len(s.names))
	for i, name := range s.names {
		infos[i] = ChannelInfo{
			Name:        name,
			SampleRate:  s.rate,
			Samples:     int64(len(s.data[i])),
			StartMicros: s.startMicros,
		}
	}
	return infos, nil
}

// Read implements Source. Requested ranges reaching beyond the recorded
// data are padded with NaN.
func (s *BufferSource) Read(ctx context.Context, names []string, startMicros, stopMicros int64) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := sampleCount(startMicros, stopMicros, s.rate)
	first := int64(math.Round(float64(startMicros-s.startMicros) * s.rate / 1e6))

	out := make([][]float64, len(names))
	for i, name := range names {
		ch, ok := s.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
		}
		out[i] = sliceWithPadding(s.data[ch], first, n)
	}
	return out, nil
}

// sampleCount converts a microsecond range into a sample count at rate.
func sampleCount(startMicros, stopMicros int64, rate float64) int {
	n := int(math.Round(float64(stopMicros-startMicros) * rate / 1e6))
	return max(n, 0)
}

// sliceWithPadding copies n samples starting at index first, filling
// positions outside [0, len(x)) with NaN.
func sliceWithPadding(x []float64, first int64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		idx := first + int64(i)
		if idx < 0 || idx >= int64(len(x)) {
			out[i] = math.NaN()
			continue
		}
		out[i] = x[idx]
	}
	return out
}
