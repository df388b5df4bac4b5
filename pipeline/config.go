package pipeline

import (
	"log/slog"

	"github.com/mbrezny/sleepfeat/dsp/leader"
)

// NightMaskFunc reports whether an epoch belongs to the night interval
// that anchors feature normalization. It receives the epoch index and the
// epoch start in microseconds since the Unix epoch.
type NightMaskFunc func(epoch int, startMicros int64) bool

type config struct {
	windowSec     float64
	overlapSec    float64
	maxEpochs     int
	windowSamples int
	leadTrim      int
	workers       int
	queueDepth    int
	failureLimit  int
	nightFn       NightMaskFunc
	channels      []string
	logger        *slog.Logger
	extractor     *leader.Extractor
}

func defaultConfig() config {
	return config{
		windowSec:     30,
		overlapSec:    1.25,
		maxEpochs:     1500,
		windowSamples: 8192,
		leadTrim:      63,
		queueDepth:    2,
	}
}

// Option configures a [Runner].
type Option func(*config)

// WithWindow sets the epoch length in seconds. Values that are not
// positive are ignored.
func WithWindow(seconds float64) Option {
	return func(cfg *config) {
		if seconds > 0 {
			cfg.windowSec = seconds
		}
	}
}

// WithOverlap sets the overlap read on both sides of an epoch, in seconds.
// Negative values are ignored.
func WithOverlap(seconds float64) Option {
	return func(cfg *config) {
		if seconds >= 0 {
			cfg.overlapSec = seconds
		}
	}
}

// WithMaxEpochs caps the number of epochs extracted from a recording.
// Values below one are ignored.
func WithMaxEpochs(n int) Option {
	return func(cfg *config) {
		if n >= 1 {
			cfg.maxEpochs = n
		}
	}
}

// WithWindowSamples sets the number of converted samples fed to the
// extractor per epoch. Values below one are ignored.
func WithWindowSamples(n int) Option {
	return func(cfg *config) {
		if n >= 1 {
			cfg.windowSamples = n
		}
	}
}

// WithLeadTrim sets how many converted samples are dropped from the start
// of each epoch before extraction. Negative values are ignored.
func WithLeadTrim(n int) Option {
	return func(cfg *config) {
		if n >= 0 {
			cfg.leadTrim = n
		}
	}
}

// WithWorkers fixes the extraction worker count. Without this option the
// pool size follows GOMAXPROCS, capped by the epoch count.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		if n >= 1 {
			cfg.workers = n
		}
	}
}

// WithQueueDepth sets the buffered depth of the epoch job channel. Zero
// makes hand-offs synchronous; negative values are ignored.
func WithQueueDepth(n int) Option {
	return func(cfg *config) {
		if n >= 0 {
			cfg.queueDepth = n
		}
	}
}

// WithFailureLimit sets how many failed epochs a run tolerates before
// aborting. The default of zero aborts on the first failure. Negative
// values are ignored.
func WithFailureLimit(n int) Option {
	return func(cfg *config) {
		if n >= 0 {
			cfg.failureLimit = n
		}
	}
}

// WithNightMask installs the predicate selecting the epochs whose
// statistics anchor normalization. Without it every epoch counts as night.
func WithNightMask(fn NightMaskFunc) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.nightFn = fn
		}
	}
}

// WithChannels restricts the run to the named source channels; names not
// present in the source fail the run. An empty list is ignored.
func WithChannels(names ...string) Option {
	return func(cfg *config) {
		if len(names) > 0 {
			cfg.channels = append([]string(nil), names...)
		}
	}
}

// WithLogger sets the structured logger. The default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithExtractor replaces the default feature extractor, for example to
// change the scale count or the excluded scales.
func WithExtractor(e *leader.Extractor) Option {
	return func(cfg *config) {
		if e != nil {
			cfg.extractor = e
		}
	}
}
