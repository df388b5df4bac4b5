package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-vecmath"

	"github.com/mbrezny/sleepfeat/dsp/leader"
	"github.com/mbrezny/sleepfeat/dsp/resample"
	"github.com/mbrezny/sleepfeat/feature"
	"github.com/mbrezny/sleepfeat/montage"
)

var (
	// ErrNoChannels indicates a source without any usable channel.
	ErrNoChannels = errors.New("pipeline: no usable channels")

	// ErrUnknownChannel indicates a requested channel the source does
	// not carry.
	ErrUnknownChannel = errors.New("pipeline: unknown channel")

	// ErrRateMismatch indicates channels with differing sample rates.
	ErrRateMismatch = errors.New("pipeline: sample rate mismatch")

	// ErrNoPairs indicates a channel set from which no bipolar pair can
	// be derived.
	ErrNoPairs = errors.New("pipeline: montage yields no pairs")

	// ErrNoEpochs indicates a recording too short for a single epoch.
	ErrNoEpochs = errors.New("pipeline: recording too short for an epoch")

	// ErrTooManyFailures indicates a run aborted because more epochs
	// failed than the configured limit allows.
	ErrTooManyFailures = errors.New("pipeline: failed epoch limit exceeded")
)

// Result carries the artifacts of one run.
type Result struct {
	// Features is the post-processed feature tensor, indexed
	// [pair][epoch][feature].
	Features *feature.Tensor

	// Pairs holds the bipolar pair names in tensor channel order.
	Pairs []string

	// EpochStarts holds each epoch's start in microseconds since the
	// Unix epoch, UTC.
	EpochStarts []int64

	// Night flags the epochs that anchored normalization.
	Night []bool

	// Scores is the discriminability matrix, indexed [pair][feature].
	Scores [][]float64

	// Failed counts the epochs left missing after read or conversion
	// failures.
	Failed int
}

// Runner extracts the feature tensor of one recording.
type Runner struct {
	src Source
	cfg config
}

// New builds a Runner over src.
func New(src Source, opts ...Option) (*Runner, error) {
	if src == nil {
		return nil, errors.New("pipeline: nil source")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.extractor == nil {
		cfg.extractor = leader.New()
	}
	return &Runner{src: src, cfg: cfg}, nil
}

// Run executes the pipeline and blocks until the result is ready, the
// failure limit is exceeded or ctx is cancelled. Cancellation returns
// ctx.Err() without a partial Result: epochs extracted before the
// cancellation are internally intact but discarded with the tensor, so a
// caller that needs resumption must re-run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	infos, err := r.src.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: listing channels: %w", err)
	}
	used, err := r.selectChannels(infos)
	if err != nil {
		return nil, err
	}

	rate := used[0].SampleRate
	for _, info := range used[1:] {
		if info.SampleRate != rate {
			return nil, fmt.Errorf("%w: %g Hz vs %g Hz", ErrRateMismatch, rate, info.SampleRate)
		}
	}

	conv, err := resample.New(rate)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	names := make([]string, len(used))
	for i, info := range used {
		names[i] = info.Name
	}
	plan := montage.NewPlan(names)
	if excluded := plan.Excluded(); len(excluded) > 0 {
		r.cfg.logger.Warn("channels without contact numbers excluded from montage", "channels", excluded)
	}
	if plan.Len() == 0 {
		return nil, ErrNoPairs
	}

	grid, err := r.alignGrid(used, rate)
	if err != nil {
		return nil, err
	}

	ext := r.cfg.extractor
	tensor := feature.NewTensor(plan.Len(), grid.epochs, ext.FeatureLen())
	starts := make([]int64, grid.epochs)
	for i := range starts {
		starts[i] = grid.firstMicros + int64(i)*grid.stepMicros
	}

	r.cfg.logger.Info("extracting features",
		"pairs", plan.Len(), "epochs", grid.epochs, "source_rate", rate,
		"features", ext.FeatureLen(), "workers", r.workerCount(grid.epochs))

	failed, err := r.extract(ctx, conv, plan, grid, tensor, names)
	if err != nil {
		return nil, err
	}

	night := make([]bool, grid.epochs)
	for i := range night {
		night[i] = true
	}
	if r.cfg.nightFn != nil {
		for i := range night {
			night[i] = r.cfg.nightFn(i, starts[i])
		}
	}

	scores, err := feature.Process(tensor, night)
	if err != nil {
		return nil, fmt.Errorf("pipeline: post-processing: %w", err)
	}

	r.cfg.logger.Info("feature extraction complete",
		"epochs", grid.epochs, "failed", failed)

	return &Result{
		Features:    tensor,
		Pairs:       plan.Names(),
		EpochStarts: starts,
		Night:       night,
		Scores:      scores,
		Failed:      failed,
	}, nil
}

// epochGrid is the epoch schedule of one run, in microseconds.
type epochGrid struct {
	firstMicros   int64
	stepMicros    int64
	overlapMicros int64
	epochs        int
}

// selectChannels resolves the configured whitelist against the source
// channels, keeping source order when no whitelist is set.
func (r *Runner) selectChannels(infos []ChannelInfo) ([]ChannelInfo, error) {
	if len(r.cfg.channels) == 0 {
		if len(infos) == 0 {
			return nil, ErrNoChannels
		}
		return infos, nil
	}
	byName := make(map[string]ChannelInfo, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}
	used := make([]ChannelInfo, 0, len(r.cfg.channels))
	for _, name := range r.cfg.channels {
		info, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
		}
		used = append(used, info)
	}
	return used, nil
}

// alignGrid anchors the epoch grid to the recording clock. The shortest
// channel bounds the epoch count so range reads stay inside every channel.
func (r *Runner) alignGrid(used []ChannelInfo, rate float64) (epochGrid, error) {
	startMicros := used[0].StartMicros
	samples := used[0].Samples
	for _, info := range used[1:] {
		samples = min(samples, info.Samples)
		if info.StartMicros != startMicros {
			r.cfg.logger.Warn("channel start times differ",
				"channel", info.Name, "delta_us", info.StartMicros-startMicros)
		}
	}

	off := AlignStart(time.UnixMicro(startMicros), r.cfg.overlapSec)
	sta := int64(math.Round(rate * off))

	epochs := int(float64(samples-sta) / rate / r.cfg.windowSec)
	epochs = max(epochs, 0)
	epochs = min(epochs, r.cfg.maxEpochs)
	if epochs == 0 {
		return epochGrid{}, ErrNoEpochs
	}

	return epochGrid{
		firstMicros:   startMicros + int64(math.Round(float64(sta)/rate*1e6)),
		stepMicros:    int64(math.Round(r.cfg.windowSec * 1e6)),
		overlapMicros: int64(math.Round(r.cfg.overlapSec * 1e6)),
		epochs:        epochs,
	}, nil
}

func (r *Runner) workerCount(epochs int) int {
	n := r.cfg.workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(min(n, epochs), 1)
}

// epochJob carries the montaged source-rate block of one epoch.
type epochJob struct {
	index int
	pairs [][]float64
}

// extract streams epochs from the source through the worker pool into the
// tensor. It returns the number of failed epochs.
func (r *Runner) extract(ctx context.Context, conv *resample.Converter, plan *montage.Plan, grid epochGrid, tensor *feature.Tensor, names []string) (int, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var failures atomic.Int64
	fail := func(epoch int, err error) {
		r.cfg.logger.Warn("epoch failed", "epoch", epoch, "error", err)
		markMissing(tensor, epoch)
		if int(failures.Add(1)) > r.cfg.failureLimit {
			cancel()
		}
	}

	jobs := make(chan epochJob, r.cfg.queueDepth)
	var wg sync.WaitGroup

	for range r.workerCount(grid.epochs) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-runCtx.Done():
					return
				case job, ok := <-jobs:
					if !ok {
						return
					}
					if err := r.processEpoch(conv, tensor, job); err != nil {
						fail(job.index, err)
						continue
					}
					r.cfg.logger.Debug("epoch extracted", "epoch", job.index)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for e := range grid.epochs {
			if runCtx.Err() != nil {
				return
			}
			epochStart := grid.firstMicros + int64(e)*grid.stepMicros
			block, err := r.src.Read(runCtx, names, epochStart-grid.overlapMicros, epochStart+grid.stepMicros+grid.overlapMicros)
			if err != nil {
				if runCtx.Err() != nil {
					return
				}
				fail(e, fmt.Errorf("read: %w", err))
				continue
			}
			pairs, err := plan.Apply(block)
			if err != nil {
				fail(e, fmt.Errorf("montage: %w", err))
				continue
			}
			select {
			case jobs <- epochJob{index: e, pairs: pairs}:
			case <-runCtx.Done():
				return
			}
		}
	}()

	wg.Wait()

	failed := int(failures.Load())
	if err := ctx.Err(); err != nil {
		return failed, err
	}
	if failed > r.cfg.failureLimit {
		return failed, fmt.Errorf("%w: %d of %d epochs", ErrTooManyFailures, failed, grid.epochs)
	}
	return failed, nil
}

// processEpoch converts, centers and extracts every pair of one epoch into
// its tensor rows.
func (r *Runner) processEpoch(conv *resample.Converter, tensor *feature.Tensor, job epochJob) error {
	need := r.cfg.leadTrim + r.cfg.windowSamples
	segs := make([][]float64, len(job.pairs))
	for i, pair := range job.pairs {
		out := conv.Process(pair)
		if len(out) < need {
			return fmt.Errorf("pipeline: epoch yields %d converted samples, need %d", len(out), need)
		}
		segs[i] = out[r.cfg.leadTrim:need]
	}

	// One scalar mean over the whole epoch block centers all pairs
	// together.
	total := 0.0
	for _, seg := range segs {
		total += vecmath.Sum(seg)
	}
	mean := total / float64(len(segs)*r.cfg.windowSamples)

	for i, seg := range segs {
		for j := range seg {
			seg[j] -= mean
		}
		copy(tensor.Row(i, job.index), r.cfg.extractor.Extract(seg))
	}
	return nil
}

// markMissing fills every channel's row of one epoch with NaN.
func markMissing(tensor *feature.Tensor, epoch int) {
	nan := math.NaN()
	for ch := range tensor.Channels() {
		row := tensor.Row(ch, epoch)
		for i := range row {
			row[i] = nan
		}
	}
}
