package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tracefront/build-plane/internal/config"
	"github.com/tracefront/build-plane/internal/logging"
	"github.com/tracefront/build-plane/internal/pool"
	"github.com/tracefront/build-plane/internal/progress"
	"github.com/tracefront/build-plane/internal/s3"
)

// Runner owns the target workers for one build-plane process. In single-shot
// mode it builds every configured target once, concurrently, and reports the
// first failure. Otherwise workers are scheduled on a pool and rebuilt on an
// interval until the context is cancelled.
type Runner struct {
	config     *config.Root
	projectDir string
	bundle     BundleFunc
	singleShot bool
	interval   time.Duration
	log        *logging.Logger
	output     io.Writer
	pool       *pool.Pool
	workers    map[string]*TargetWorker
}

func New() *Runner {
	return &Runner{
		log:        logging.NopLogger(),
		projectDir: ".",
		workers:    make(map[string]*TargetWorker),
	}
}

func (r *Runner) WithConfig(root *config.Root) *Runner {
	r.config = root
	return r
}

func (r *Runner) WithProjectDir(dir string) *Runner {
	r.projectDir = cmp.Or(dir, ".")
	return r
}

func (r *Runner) WithBundleFunc(fn BundleFunc) *Runner {
	r.bundle = fn
	return r
}

func (r *Runner) WithSingleShot(singleShot bool) *Runner {
	r.singleShot = singleShot
	return r
}

func (r *Runner) WithInterval(d time.Duration) *Runner {
	r.interval = d
	return r
}

func (r *Runner) WithLogger(logger *logging.Logger) *Runner {
	r.log = logger
	return r
}

// WithProgressOutput enables a progress bar on w. Leave unset for quiet runs.
func (r *Runner) WithProgressOutput(w io.Writer) *Runner {
	r.output = w
	return r
}

func (r *Runner) Run(ctx context.Context) error {
	if r.config == nil {
		return errors.New("no configuration provided")
	}
	if err := r.config.Storage.Validate(); err != nil {
		return err
	}

	var storage s3.ObjectStorage
	if !r.config.Storage.Empty() {
		var err error
		storage, err = s3.New(ctx, r.config.Storage)
		if err != nil {
			return err
		}
	}

	opts := r.config.PluginOptions()
	opts.Release = cmp.Or(opts.Release, DetectRelease(), buildID(r.config.Build))

	targets := r.config.BuildTargets()

	var bar *progress.Bar
	if r.output != nil {
		bar = progress.New(r.output, "building targets", len(targets))
	}

	for _, target := range targets {
		r.workers[target] = NewTargetWorker(target, r.config.Build, opts, r.log.WithField("target", target), bar).
			WithBundleFunc(r.bundle).
			WithStorage(storage).
			WithProjectDir(r.projectDir).
			WithSingleShot(r.singleShot).
			WithInterval(r.interval)
	}

	if r.singleShot {
		defer bar.Finish()

		g, ctx := errgroup.WithContext(ctx)
		for _, w := range r.workers {
			g.Go(func() error {
				w.Execute(ctx)
				if s := w.Status(); s.State != BuildStateSuccess {
					return fmt.Errorf("target %q: %s: %s", w.Target(), s.State, s.Message)
				}
				return nil
			})
		}
		return g.Wait()
	}

	r.pool = pool.New(len(targets))
	for _, w := range r.workers {
		r.pool.Add(w.Target(), w.Execute)
	}

	<-ctx.Done()
	return ctx.Err()
}

// Trigger forces an immediate rebuild of the named target. Only meaningful in
// interval mode.
func (r *Runner) Trigger(target string) error {
	if r.pool == nil {
		return fmt.Errorf("no scheduled worker for target %q", target)
	}
	return r.pool.Trigger(target)
}

// UpdateConfig retires workers whose declared configuration changed. Retired
// workers drop out of the pool on their next iteration.
func (r *Runner) UpdateConfig(root *config.Root) {
	opts := root.PluginOptions()
	for _, w := range r.workers {
		w.UpdateConfig(root.Build, opts)
	}
}

func buildID(b *config.Build) string {
	if b == nil {
		return ""
	}
	return b.BuildID
}
