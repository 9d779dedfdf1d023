package buildcfg

import (
	"github.com/tracefront/build-plane/internal/initfiles"
	"github.com/tracefront/build-plane/pkg/artifact"
)

// Recorder receives the on-disk location of the server-side initialization
// file, once per wrap. Calls are fire-and-forget; implementations must
// tolerate being called repeatedly with the same path since dual-target
// builds wrap twice per process.
type Recorder interface {
	RecordServerInitPath(path string)
}

// Wrapper produces instrumented build configurations. The zero value is not
// usable; construct with NewWrapper.
type Wrapper struct {
	opts     artifact.Options
	recorder Recorder
	dir      string
}

// NewWrapper returns a Wrapper carrying the given plugin options. The options
// are opaque here; they are handed to plugin construction per target.
func NewWrapper(opts artifact.Options) *Wrapper {
	return &Wrapper{
		opts:     opts,
		recorder: initfiles.SharedRecorder(),
		dir:      ".",
	}
}

// WithRecorder substitutes the init-file location recorder.
func (w *Wrapper) WithRecorder(r Recorder) *Wrapper {
	w.recorder = r
	return w
}

// WithProjectDir sets the directory searched for initialization files.
// Defaults to the working directory.
func (w *Wrapper) WithProjectDir(dir string) *Wrapper {
	w.dir = dir
	return w
}

// Wrap returns a copy of cfg whose bundler hook delegates to the user's
// original hook and then applies TransformBundlerConfig. Every other field is
// carried over unchanged. Errors or panics from the user's hook propagate to
// the caller as-is.
func (w *Wrapper) Wrap(cfg *Config) *Config {
	w.record()
	return w.wrapConfig(cfg)
}

// WrapFactory is Wrap for phase-dependent configurations: the returned
// factory forwards phase and phase context to f unmodified, then wraps
// whatever f materializes.
func (w *Wrapper) WrapFactory(f Factory) Factory {
	w.record()
	return func(phase string, pctx PhaseContext) *Config {
		return w.wrapConfig(f(phase, pctx))
	}
}

func (w *Wrapper) wrapConfig(cfg *Config) *Config {
	out := cfg.Clone()

	orig := out.BundlerHook
	control := out.PluginControl
	opts := w.opts

	out.BundlerHook = func(bc *BundlerConfig, bctx BuildContext) *BundlerConfig {
		if orig != nil {
			if next := orig(bc, bctx); next != nil {
				bc = next
			}
		}
		return TransformBundlerConfig(bc, bctx, opts, control)
	}
	return out
}

// record reports the server init file location. Not observable in the wrap
// result; lookup failures fall back to the conventional path.
func (w *Wrapper) record() {
	if w.recorder == nil {
		return
	}
	path, err := initfiles.FindServerConfig(w.dir)
	if err != nil || path == "" {
		path = ServerInitModule
	}
	w.recorder.RecordServerInitPath(path)
}

// Wrap wraps a static build configuration with default collaborators.
func Wrap(cfg *Config, opts artifact.Options) *Config {
	return NewWrapper(opts).Wrap(cfg)
}

// WrapFactory wraps a phase-dependent build configuration with default
// collaborators.
func WrapFactory(f Factory, opts artifact.Options) Factory {
	return NewWrapper(opts).WrapFactory(f)
}
