package buildcfg

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
)

// Bundle-name and module-path conventions of the host bundler. Injection only
// takes effect if these match the host tool exactly, so treat them as part of
// the wire contract.
const (
	// MainEntryKey is the client-side primary bundle.
	MainEntryKey = "main"

	// LegacyMainKey is the auxiliary bundle some host versions emit next to
	// "main". Its contents logically belong to "main" and are folded in
	// during injection to avoid double initialization.
	LegacyMainKey = "main.js"

	// ServerEntryKey is the bundle slot that loads the server-side
	// initialization module.
	ServerEntryKey = "tracefront/init-server"

	ServerInitModule = "./tracefront.server.config.js"
	ClientInitModule = "./tracefront.client.config.js"

	// DevtoolHidden is the debug-symbol mode the transform forces so that
	// source maps are produced for upload without being referenced from the
	// emitted bundles.
	DevtoolHidden = "hidden-source-map"
)

// BuildContext is the per-invocation metadata the host tool passes to bundler
// hooks. It is never mutated by this package.
type BuildContext struct {
	IsServer bool
	Dev      bool
	BuildID  string
}

// EntryFunc resolves the bundler's entry mapping on demand. The host bundler
// calls it once per build, at entry-resolution time.
type EntryFunc func(ctx context.Context) (EntryMap, error)

// EntryMap maps bundle names to the modules that seed them.
type EntryMap map[string]EntrySpec

// Plugin is a bundler plugin instance. Identity via Name is all this package
// needs; construction and behavior belong to the plugin packages.
type Plugin interface {
	Name() string
}

// Hook is the bundler-hook calling convention of the host tool: it receives
// the bundler configuration and build context and returns the configuration
// to use.
type Hook func(cfg *BundlerConfig, bctx BuildContext) *BundlerConfig

// BundlerConfig models the host bundler's configuration. Options this package
// does not interpret travel in Extra and pass through transforms untouched.
type BundlerConfig struct {
	Target  string
	Devtool string
	Entry   EntryFunc
	Plugins []Plugin
	Extra   map[string]any
}

// Clone returns a shallow copy. The plugin list is cloned so appends do not
// alias the input; Entry, Extra and the plugin instances are shared.
func (c *BundlerConfig) Clone() *BundlerConfig {
	if c == nil {
		return &BundlerConfig{}
	}
	cpy := *c
	cpy.Plugins = slices.Clone(c.Plugins)
	return &cpy
}

// HasPlugin reports whether a plugin with the given name is attached.
func (c *BundlerConfig) HasPlugin(name string) bool {
	return slices.ContainsFunc(c.Plugins, func(p Plugin) bool { return p.Name() == name })
}

// EntrySpec is one bundle's entry specification: either a bare module
// identifier or an ordered module list. The distinction only matters for
// bundles injection does not touch; touched bundles always come out as lists.
type EntrySpec struct {
	modules []string
	list    bool
}

// Single returns the bare-identifier form of an entry spec.
func Single(module string) EntrySpec {
	return EntrySpec{modules: []string{module}}
}

// List returns the list form of an entry spec. List() is a present-but-empty
// entry, distinct from an absent one.
func List(modules ...string) EntrySpec {
	return EntrySpec{modules: slices.Clone(modules), list: true}
}

// Modules returns the spec normalized to an ordered module list. The zero
// value yields nil.
func (e EntrySpec) Modules() []string {
	return slices.Clone(e.modules)
}

// IsList reports whether the spec is in list form.
func (e EntrySpec) IsList() bool {
	return e.list
}

func (e EntrySpec) Equal(other EntrySpec) bool {
	return e.list == other.list && slices.Equal(e.modules, other.modules)
}

func (e EntrySpec) MarshalYAML() (any, error) {
	if !e.list && len(e.modules) == 1 {
		return e.modules[0], nil
	}
	if e.modules == nil {
		return []string{}, nil
	}
	return e.modules, nil
}

func (e EntrySpec) MarshalJSON() ([]byte, error) {
	v, err := e.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (e *EntrySpec) UnmarshalYAML(bs []byte) error {
	var single string
	if err := yaml.Unmarshal(bs, &single); err == nil {
		*e = Single(single)
		return nil
	}

	var many []string
	if err := yaml.Unmarshal(bs, &many); err != nil {
		return fmt.Errorf("entry must be a module path or a list of module paths: %w", err)
	}
	*e = List(many...)
	return nil
}

func (e *EntrySpec) UnmarshalJSON(bs []byte) error {
	var single string
	if err := json.Unmarshal(bs, &single); err == nil {
		*e = Single(single)
		return nil
	}

	var many []string
	if err := json.Unmarshal(bs, &many); err != nil {
		return fmt.Errorf("entry must be a module path or a list of module paths: %w", err)
	}
	*e = List(many...)
	return nil
}

// Resolve invokes the entry function, treating a nil function as an empty
// mapping.
func (f EntryFunc) Resolve(ctx context.Context) (EntryMap, error) {
	if f == nil {
		return EntryMap{}, nil
	}
	return f(ctx)
}

// StaticEntries returns an entry function resolving to a fixed mapping.
func StaticEntries(entries EntryMap) EntryFunc {
	return func(context.Context) (EntryMap, error) {
		return maps.Clone(entries), nil
	}
}

func (m EntryMap) Equal(other EntryMap) bool {
	return maps.EqualFunc(m, other, EntrySpec.Equal)
}
