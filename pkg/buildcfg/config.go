package buildcfg

import (
	"maps"
	"slices"
)

// Config is an application author's top-level build configuration. Known
// fields cover what this package interprets; everything else the host tool
// understands travels in Extra and is carried through wrapping untouched,
// nested values by reference.
type Config struct {
	DistDir  string            `json:"dist_dir,omitempty"`
	BasePath string            `json:"base_path,omitempty"`
	Env      map[string]string `json:"env,omitempty"`
	Extra    map[string]any    `json:"extra,omitempty"`

	// BundlerHook is the user's own bundler hook, if any. Wrapping replaces
	// this with a hook that delegates to the original and then applies the
	// Tracefront transform.
	BundlerHook Hook `json:"-"`

	// PluginControl turns the artifact plugin off per target.
	PluginControl PluginControl `json:"plugin_control,omitzero"`
}

// PluginControl disables the artifact plugin for individual build targets.
// Each target's enablement is independent of the other.
type PluginControl struct {
	DisableClient bool `json:"disable_for_client,omitempty"`
	DisableServer bool `json:"disable_for_server,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

// Disabled reports whether the plugin is off for the given target.
func (pc PluginControl) Disabled(isServer bool) bool {
	if isServer {
		return pc.DisableServer
	}
	return pc.DisableClient
}

// Clone returns a shallow copy: scalar fields are copied, maps are shared by
// reference with the original.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	cpy := *c
	return &cpy
}

func (c *Config) Equal(other *Config) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.DistDir == other.DistDir &&
		c.BasePath == other.BasePath &&
		maps.Equal(c.Env, other.Env) &&
		extraEqual(c.Extra, other.Extra) &&
		c.PluginControl == other.PluginControl
}

func extraEqual(a, b map[string]any) bool {
	return maps.EqualFunc(a, b, func(x, y any) bool {
		xs, ok1 := x.([]string)
		ys, ok2 := y.([]string)
		if ok1 && ok2 {
			return slices.Equal(xs, ys)
		}
		return x == y
	})
}

// PhaseContext is passed by the host tool to factory configurations alongside
// the phase name.
type PhaseContext struct {
	DefaultConfig map[string]any
}

// Factory is the phase-dependent form of a build configuration: the host tool
// calls it with the build phase and phase context to materialize a Config.
type Factory func(phase string, pctx PhaseContext) *Config
