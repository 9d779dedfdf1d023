// Package buildcfg wraps an application's build configuration so that the
// Tracefront artifact plugin and its initialization modules are wired into the
// bundler pipeline without disturbing anything else the configuration does.
//
// # Basic Usage
//
// Wrap a static build configuration:
//
//	import (
//	    "github.com/tracefront/build-plane/pkg/artifact"
//	    "github.com/tracefront/build-plane/pkg/buildcfg"
//	)
//
//	cfg := &buildcfg.Config{
//	    DistDir: "dist",
//	    BundlerHook: func(c *buildcfg.BundlerConfig, bctx buildcfg.BuildContext) *buildcfg.BundlerConfig {
//	        // the user's own customizations run first
//	        return c
//	    },
//	}
//
//	wrapped := buildcfg.Wrap(cfg, artifact.Options{Org: "acme", Project: "storefront"})
//
// The returned configuration is a copy of the input whose BundlerHook first
// delegates to the original hook and then applies the Tracefront transform.
// All other fields are carried over unchanged.
//
// # Factory Configurations
//
// Build tools that resolve configuration per build phase pass a factory
// instead of a static record. The wrapper preserves that shape:
//
//	factory := func(phase string, pctx buildcfg.PhaseContext) *buildcfg.Config {
//	    if phase == "phase-production-build" {
//	        return &buildcfg.Config{DistDir: "dist-prod"}
//	    }
//	    return &buildcfg.Config{DistDir: "dist"}
//	}
//
//	wrapped := buildcfg.WrapFactory(factory, artifact.Options{Org: "acme", Project: "storefront"})
//
// Phase and phase context are forwarded to the user factory unmodified.
//
// # What the Transform Does
//
// For every target the bundler hook runs for, the transform returns a copy of
// the bundler configuration with:
//
//   - the entry function replaced by one that injects the Tracefront
//     initialization module into the server entry slot (server targets) or
//     the "main" bundle (client targets),
//   - devtool forced to "hidden-source-map", and
//   - one artifact plugin instance appended to the plugin list,
//
// unless the plugin is disabled for that target via Config.PluginControl, in
// which case devtool and the plugin list are left alone. Entry injection
// happens regardless so that initialization order stays deterministic.
//
// # Per-Target Independence
//
// Server and client targets are transformed from independently owned bundler
// configurations. Disabling the plugin for one target never affects the
// other; the wrapper holds no mutable state across hook invocations.
package buildcfg
