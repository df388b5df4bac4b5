// Package edffile serves EDF recordings as a pipeline source.
//
// The EDF reader exposes forward-only signal readers and keeps its parsed
// header private, so a Source is built from the file handle plus the
// header the file was created with. Per-signal buffers retain the tail of
// consumed samples, letting the overlapping range reads of successive
// epochs replay without reopening the signal; ranges starting before the
// buffered tail reopen it and skip forward.
package edffile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/OpenPSG/edf"

	"github.com/mbrezny/sleepfeat/pipeline"
)

// ErrUnknownLength reports a header whose data record count was never
// finalized.
var ErrUnknownLength = errors.New("edffile: unknown data record count")

// skipChunk bounds the scratch buffer used when skipping ahead.
const skipChunk = 8192

// Source adapts one EDF file to the pipeline's Source interface. It is not
// safe for concurrent reads; the pipeline's single producer satisfies
// this.
type Source struct {
	hdr         edf.Header
	startMicros int64
	rates       []float64
	index       map[string]int
	streams     []*stream
}

// NewSource opens the EDF data behind r. hdr must be the header the file
// was written with; signal geometry (label, rate, length, start time)
// derives from it. The caller keeps ownership of r and closes it after
// the last read.
func NewSource(r io.ReadSeeker, hdr edf.Header) (*Source, error) {
	if hdr.DataRecords < 0 {
		return nil, ErrUnknownLength
	}
	if hdr.DataRecordDuration <= 0 {
		return nil, fmt.Errorf("edffile: data record duration %v", hdr.DataRecordDuration)
	}
	if len(hdr.Signals) == 0 {
		return nil, errors.New("edffile: header lists no signals")
	}

	reader, err := edf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("edffile: %w", err)
	}

	src := &Source{
		hdr:         hdr,
		startMicros: hdr.StartTime.UnixMicro(),
		rates:       make([]float64, len(hdr.Signals)),
		index:       make(map[string]int, len(hdr.Signals)),
		streams:     make([]*stream, len(hdr.Signals)),
	}
	recordSec := hdr.DataRecordDuration.Seconds()
	for i, sig := range hdr.Signals {
		if sig.SamplesPerRecord <= 0 {
			return nil, fmt.Errorf("edffile: signal %q: %d samples per record", sig.Label, sig.SamplesPerRecord)
		}
		if _, dup := src.index[sig.Label]; dup {
			return nil, fmt.Errorf("edffile: duplicate signal label %q", sig.Label)
		}
		src.index[sig.Label] = i
		src.rates[i] = float64(sig.SamplesPerRecord) / recordSec

		total := int64(sig.SamplesPerRecord) * int64(hdr.DataRecords)
		st, err := newStream(reader, i, total)
		if err != nil {
			return nil, err
		}
		src.streams[i] = st
	}
	return src, nil
}

// Channels implements pipeline.Source.
func (s *Source) Channels(ctx context.Context) ([]pipeline.ChannelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos := make([]pipeline.ChannelInfo, len(s.hdr.Signals))
	for i, sig := range s.hdr.Signals {
		infos[i] = pipeline.ChannelInfo{
			Name:        sig.Label,
			SampleRate:  s.rates[i],
			Samples:     int64(sig.SamplesPerRecord) * int64(s.hdr.DataRecords),
			StartMicros: s.startMicros,
		}
	}
	return infos, nil
}

// Read implements pipeline.Source. Positions outside the recorded range
// are NaN.
func (s *Source) Read(ctx context.Context, names []string, startMicros, stopMicros int64) ([][]float64, error) {
	out := make([][]float64, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx, ok := s.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", pipeline.ErrUnknownChannel, name)
		}
		rate := s.rates[idx]
		n := int(math.Round(float64(stopMicros-startMicros) * rate / 1e6))
		first := int64(math.Round(float64(startMicros-s.startMicros) * rate / 1e6))

		vals, err := s.streams[idx].read(first, max(n, 0))
		if err != nil {
			return nil, err
		}
		out[i] = vals
	}
	return out, nil
}

// stream is a buffered forward view over one signal. buf holds the most
// recently consumed samples, ending just before absolute index next.
type stream struct {
	reader *edf.Reader
	sig    int
	total  int64

	sr   *edf.SignalReader
	next int64
	buf  []float64
}

func newStream(reader *edf.Reader, sig int, total int64) (*stream, error) {
	sr, err := reader.Signal(sig)
	if err != nil {
		return nil, fmt.Errorf("edffile: opening signal %d: %w", sig, err)
	}
	return &stream{reader: reader, sig: sig, total: total, sr: sr}, nil
}

// read serves samples [first, first+n), NaN outside the recording.
func (st *stream) read(first int64, n int) ([]float64, error) {
	out := make([]float64, n)
	if n == 0 {
		return out, nil
	}

	lo := max(first, 0)
	hi := min(first+int64(n), st.total)

	if lo < st.next-int64(len(st.buf)) {
		if err := st.rewind(); err != nil {
			return nil, err
		}
	}
	if lo > st.next {
		if err := st.discardTo(lo); err != nil {
			return nil, err
		}
	}
	if hi > st.next {
		if err := st.fetchTo(hi); err != nil {
			return nil, err
		}
	}

	bufStart := st.next - int64(len(st.buf))
	for i := range out {
		idx := first + int64(i)
		if idx < bufStart || idx >= st.next {
			out[i] = math.NaN()
			continue
		}
		out[i] = st.buf[idx-bufStart]
	}

	// The tail kept here spans the whole request, more than the overlap
	// any later in-order request can reach back for.
	if len(st.buf) > n {
		st.buf = append(st.buf[:0], st.buf[len(st.buf)-n:]...)
	}
	return out, nil
}

// rewind reopens the signal at its first sample.
func (st *stream) rewind() error {
	sr, err := st.reader.Signal(st.sig)
	if err != nil {
		return fmt.Errorf("edffile: reopening signal %d: %w", st.sig, err)
	}
	st.sr = sr
	st.next = 0
	st.buf = st.buf[:0]
	return nil
}

// discardTo advances the reader to the target sample, dropping the buffer
// since the skipped gap breaks its adjacency.
func (st *stream) discardTo(target int64) error {
	st.buf = st.buf[:0]
	scratch := make([]float64, skipChunk)
	for st.next < target {
		want := min(target-st.next, int64(len(scratch)))
		m, err := st.sr.Read(scratch[:want])
		st.next += int64(m)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("edffile: signal %d: %w", st.sig, err)
		}
	}
	return nil
}

// fetchTo reads samples up to the target index into the buffer.
func (st *stream) fetchTo(target int64) error {
	for st.next < target {
		tmp := make([]float64, target-st.next)
		m, err := st.sr.Read(tmp)
		st.buf = append(st.buf, tmp[:m]...)
		st.next += int64(m)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("edffile: signal %d: %w", st.sig, err)
		}
	}
	return nil
}
