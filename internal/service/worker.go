package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/tracefront/build-plane/internal/config"
	"github.com/tracefront/build-plane/internal/logging"
	"github.com/tracefront/build-plane/internal/metrics"
	"github.com/tracefront/build-plane/internal/progress"
	"github.com/tracefront/build-plane/internal/s3"
	"github.com/tracefront/build-plane/pkg/artifact"
	"github.com/tracefront/build-plane/pkg/buildcfg"
)

var (
	defaultInterval = 30 * time.Second
	errorInterval   = 10 * time.Second
)

// BundleFunc invokes the bundler with a fully transformed configuration. The
// worker treats the bundler as opaque; anything that can consume a
// BundlerConfig and write output under the dist directory fits.
type BundleFunc func(ctx context.Context, cfg *buildcfg.BundlerConfig) error

// TargetWorker builds one target (client or server). Each iteration wraps the
// declared build configuration, runs the user hook plus the instrumentation
// transform, hands the result to the bundler, and uploads whatever artifacts
// the plugin collected from the output directory.
type TargetWorker struct {
	target      string
	buildConfig *config.Build
	opts        artifact.Options
	bundle      BundleFunc
	storage     s3.ObjectStorage
	projectDir  string
	changed     chan struct{}
	done        chan struct{}
	singleShot  bool
	log         *logging.Logger
	bar         *progress.Bar
	status      Status
	interval    time.Duration
}

func NewTargetWorker(target string, b *config.Build, opts artifact.Options, logger *logging.Logger, bar *progress.Bar) *TargetWorker {
	return &TargetWorker{
		target:      target,
		buildConfig: b,
		opts:        opts,
		projectDir:  ".",
		log:         logger,
		bar:         bar,
		changed:     make(chan struct{}), done: make(chan struct{}),
		interval: defaultInterval,
	}
}

func (w *TargetWorker) WithBundleFunc(fn BundleFunc) *TargetWorker {
	w.bundle = fn
	return w
}

func (w *TargetWorker) WithStorage(storage s3.ObjectStorage) *TargetWorker {
	w.storage = storage
	return w
}

func (w *TargetWorker) WithProjectDir(dir string) *TargetWorker {
	w.projectDir = cmp.Or(dir, ".")
	return w
}

func (w *TargetWorker) WithSingleShot(singleShot bool) *TargetWorker {
	w.singleShot = singleShot
	return w
}

func (w *TargetWorker) WithInterval(d time.Duration) *TargetWorker {
	w.interval = cmp.Or(d, defaultInterval)
	return w
}

func (w *TargetWorker) Target() string {
	return w.target
}

func (w *TargetWorker) Status() Status {
	return w.status
}

func (w *TargetWorker) Done() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// UpdateConfig requests the worker to retire if the declared build
// configuration changed. The runner replaces retired workers with fresh ones
// carrying the new configuration.
func (w *TargetWorker) UpdateConfig(b *config.Build, opts artifact.Options) {
	if b == nil || !w.buildConfig.Equal(b) || !optionsEqual(w.opts, opts) {
		w.changeConfiguration()
	}
}

// Execute runs one build iteration: wrap, transform, bundle, upload. The
// returned time is the deadline for the next iteration; the zero time retires
// the worker.
func (w *TargetWorker) Execute(ctx context.Context) time.Time {
	startTime := time.Now() // Used for timing metric

	defer w.bar.Add(1)

	if w.configurationChanged() {
		return w.die()
	}

	wrapped := buildcfg.NewWrapper(w.opts).
		WithProjectDir(w.projectDir).
		Wrap(w.buildConfig.Config())

	bctx := w.buildConfig.Context(w.target)
	cfg := wrapped.BundlerHook(w.buildConfig.BundlerConfig(w.target), bctx)

	if w.bundle != nil {
		if err := w.bundle(ctx, cfg); err != nil {
			w.log.Warnf("failed to bundle target %q: %v", w.target, err)
			return w.report(BuildStateBundlerFailed, startTime, err)
		}
	}

	for _, pl := range cfg.Plugins {
		p, ok := pl.(*artifact.Plugin)
		if !ok {
			continue
		}

		p.WithUploader(w.storage)
		p.WithOnUpload(func(name string) {
			w.log.Debugf("uploaded artifact %q for target %q", name, w.target)
		})

		if err := p.AddDir(w.distDir()); err != nil {
			w.log.Warnf("failed to scan dist directory for target %q: %v", w.target, err)
			return w.report(BuildStateInternalError, startTime, err)
		}

		n, err := p.Upload(ctx)
		if err != nil {
			w.log.Warnf("failed to upload artifacts for target %q: %v", w.target, err)
			return w.report(BuildStateUploadFailed, startTime, err)
		}

		w.log.Debugf("target %q built, %d artifacts handled", w.target, n)
	}

	return w.report(BuildStateSuccess, startTime, nil)
}

func (w *TargetWorker) distDir() string {
	if w.buildConfig != nil && w.buildConfig.DistDir != "" {
		return w.buildConfig.DistDir
	}
	return "dist"
}

func (w *TargetWorker) report(state BuildState, startTime time.Time, err error) time.Time {
	interval := w.interval
	w.status.State = state
	w.status.Message = ""
	if err != nil {
		interval = errorInterval // faster retry on error
		w.status.Message = err.Error()
	}

	if state == BuildStateSuccess {
		metrics.TargetBuildSucceeded(w.target, startTime)
	} else {
		metrics.TargetBuildFailed.WithLabelValues(w.target, state.String()).Inc()
	}

	if w.singleShot {
		return w.die()
	}

	return time.Now().Add(interval)
}

func (w *TargetWorker) changeConfiguration() {
	select {
	case <-w.changed:
	default:
		close(w.changed)
	}
}

func (w *TargetWorker) configurationChanged() bool {
	select {
	case <-w.changed:
		return true
	default:
		return false
	}
}

func (w *TargetWorker) die() time.Time {
	select {
	case <-w.done:
	default:
		close(w.done)
	}

	var zero time.Time
	return zero
}

func optionsEqual(a, b artifact.Options) bool {
	return a.Org == b.Org &&
		a.Project == b.Project &&
		a.Release == b.Release &&
		a.URLPrefix == b.URLPrefix &&
		a.DryRun == b.DryRun &&
		slices.Equal(a.Include, b.Include) &&
		slices.Equal(a.Ignore, b.Ignore)
}
