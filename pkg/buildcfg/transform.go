package buildcfg

import (
	"cmp"
	"slices"

	"github.com/tracefront/build-plane/internal/metrics"
	"github.com/tracefront/build-plane/pkg/artifact"
)

// Default artifact include patterns per target, relative to the bundler's
// output directory. Used when the plugin options don't name any.
var (
	defaultServerInclude = []string{"server/**"}
	defaultClientInclude = []string{"static/**"}
)

// TransformBundlerConfig returns a copy of cfg prepared for instrumented
// builds: the entry function is replaced by the injector, devtool is forced
// to DevtoolHidden, and one artifact plugin instance is appended to the
// plugin list. Devtool and the plugin list are left untouched when control
// disables the plugin for this target. Fields the transform does not set are
// shared with the input.
func TransformBundlerConfig(cfg *BundlerConfig, bctx BuildContext, opts artifact.Options, control PluginControl) *BundlerConfig {
	out := cfg.Clone()
	out.Entry = InjectEntries(out.Entry, bctx)

	metrics.ConfigTransformCount.WithLabelValues(targetLabel(bctx.IsServer)).Inc()

	if control.Disabled(bctx.IsServer) {
		return out
	}

	out.Devtool = DevtoolHidden
	out.Plugins = append(out.Plugins, artifact.New(targetDefaults(opts, bctx)))
	return out
}

// targetDefaults fills target-appropriate defaults into a copy of the
// user-supplied plugin options.
func targetDefaults(opts artifact.Options, bctx BuildContext) artifact.Options {
	opts.Release = cmp.Or(opts.Release, bctx.BuildID)
	if len(opts.Include) == 0 {
		if bctx.IsServer {
			opts.Include = slices.Clone(defaultServerInclude)
		} else {
			opts.Include = slices.Clone(defaultClientInclude)
		}
	}
	return opts
}

func targetLabel(isServer bool) string {
	if isServer {
		return "server"
	}
	return "client"
}
