package config

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/tracefront/build-plane/internal/util"
	"github.com/tracefront/build-plane/pkg/artifact"
	"github.com/tracefront/build-plane/pkg/buildcfg"
)

// Internal configuration data structures for the Tracefront build plane.

// Metadata contains metadata about the configuration file itself. It is only
// used by tooling that exports or migrates configurations.
type Metadata struct {
	ExportedFrom string `json:"exported_from"`
	ExportedAt   string `json:"exported_at"`

	_ struct{} `additionalProperties:"false"`
}

// Root is the top-level configuration structure used by the Tracefront build
// plane.
type Root struct {
	Metadata Metadata           `json:"metadata"`
	Plugin   *artifact.Options  `json:"plugin,omitempty"`
	Build    *Build             `json:"build,omitempty"`
	Storage  ObjectStorage      `json:"artifact_storage,omitzero"`
	Secrets  map[string]*Secret `json:"secrets,omitempty"` // Schema validation overrides Secret to object type.
	Targets  StringSet          `json:"targets,omitempty"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for the Root
// struct. It injects the secret store into each secret reference so that
// internal callers can resolve secret values as needed.
func (r *Root) UnmarshalYAML(bs []byte) error {
	type rawRoot Root // avoid recursive calls to UnmarshalYAML by type aliasing
	var raw rawRoot

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw)
	return r.unmarshal(r)
}

func (r *Root) UnmarshalJSON(bs []byte) error {
	type rawRoot Root
	var raw rawRoot

	if err := json.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw)
	return r.unmarshal(r)
}

func (r *Root) Unmarshal() error {
	return r.unmarshal(r)
}

func (*Root) unmarshal(raw *Root) error {
	for name := range raw.Secrets {
		raw.Secrets[name] = cmp.Or(raw.Secrets[name], &Secret{})
		raw.Secrets[name].Name = name
	}

	if raw.Storage.AmazonS3 != nil && raw.Storage.AmazonS3.Credentials != nil {
		raw.Storage.AmazonS3.Credentials.value = raw.Secrets[raw.Storage.AmazonS3.Credentials.Name]
	}
	if raw.Storage.AzureBlobStorage != nil && raw.Storage.AzureBlobStorage.Credentials != nil {
		raw.Storage.AzureBlobStorage.Credentials.value = raw.Secrets[raw.Storage.AzureBlobStorage.Credentials.Name]
	}
	if raw.Storage.GCPCloudStorage != nil && raw.Storage.GCPCloudStorage.Credentials != nil {
		raw.Storage.GCPCloudStorage.Credentials.value = raw.Secrets[raw.Storage.GCPCloudStorage.Credentials.Name]
	}

	for _, target := range raw.Targets {
		if target != "client" && target != "server" {
			return fmt.Errorf("unknown build target %q", target)
		}
	}

	return nil
}

// SortedSecrets iterates secrets in name order.
func (r *Root) SortedSecrets() func(func(int, *Secret) bool) {
	names := make([]string, 0, len(r.Secrets))
	for name := range r.Secrets {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(yield func(int, *Secret) bool) {
		for i, name := range names {
			if !yield(i, r.Secrets[name]) {
				return
			}
		}
	}
}

// PluginOptions returns the configured plugin options, or the zero options.
func (r *Root) PluginOptions() artifact.Options {
	if r.Plugin == nil {
		return artifact.Options{}
	}
	return *r.Plugin
}

// BuildTargets returns the configured targets, defaulting to both.
func (r *Root) BuildTargets() []string {
	if len(r.Targets) == 0 {
		return []string{"client", "server"}
	}
	return slices.Clone(r.Targets)
}

// Build is the declarative form of an application build configuration. It
// lets the CLI drive the config wrapper without user Go code.
type Build struct {
	DistDir       string                 `json:"dist_dir,omitempty"`
	BasePath      string                 `json:"base_path,omitempty"`
	BuildID       string                 `json:"build_id,omitempty"`
	Dev           bool                   `json:"dev,omitempty"`
	Devtool       string                 `json:"devtool,omitempty"`
	Env           map[string]string      `json:"env,omitempty"`
	Entry         buildcfg.EntryMap      `json:"entry,omitempty"`
	Extra         map[string]any         `json:"extra,omitempty"`
	PluginControl buildcfg.PluginControl `json:"plugin_control,omitzero"`

	_ struct{} `additionalProperties:"false"`
}

// Config materializes the user build configuration this declaration
// describes.
func (b *Build) Config() *buildcfg.Config {
	if b == nil {
		return &buildcfg.Config{}
	}
	return &buildcfg.Config{
		DistDir:       b.DistDir,
		BasePath:      b.BasePath,
		Env:           maps.Clone(b.Env),
		Extra:         maps.Clone(b.Extra),
		PluginControl: b.PluginControl,
	}
}

// BundlerConfig materializes the base bundler configuration for a target, the
// way the host tool would before running hooks.
func (b *Build) BundlerConfig(target string) *buildcfg.BundlerConfig {
	cfg := &buildcfg.BundlerConfig{Target: target}
	if b != nil {
		cfg.Devtool = b.Devtool
		cfg.Entry = buildcfg.StaticEntries(maps.Clone(b.Entry))
		cfg.Extra = maps.Clone(b.Extra)
	}
	return cfg
}

// Context returns the build context for a target.
func (b *Build) Context(target string) buildcfg.BuildContext {
	bctx := buildcfg.BuildContext{IsServer: target == "server"}
	if b != nil {
		bctx.Dev = b.Dev
		bctx.BuildID = b.BuildID
	}
	return bctx
}

func (b *Build) Equal(other *Build) bool {
	return util.FastEqual(b, other, func(b, other *Build) bool {
		return b.DistDir == other.DistDir &&
			b.BasePath == other.BasePath &&
			b.BuildID == other.BuildID &&
			b.Dev == other.Dev &&
			b.Devtool == other.Devtool &&
			maps.Equal(b.Env, other.Env) &&
			b.Entry.Equal(other.Entry) &&
			b.PluginControl == other.PluginControl
	})
}

type StringSet []string

func (a StringSet) Equal(b StringSet) bool {
	return util.SetEqual(a, b, func(s string) string { return s }, func(a, b string) bool { return a == b })
}

func (a StringSet) Add(value string) StringSet {
	i := sort.Search(len(a), func(i int) bool { return a[i] >= value })
	if i < len(a) && a[i] == value {
		return a
	}

	return slices.Insert(a, i, value)
}

func ParseFile(filename string) (root *Root, err error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	return Parse(bs)
}

func Parse(bs []byte) (*Root, error) {
	if err := Validate(bs); err != nil {
		return nil, err
	}

	var root Root
	if err := yaml.Unmarshal(bs, &root); err != nil {
		return nil, err
	}

	return &root, nil
}

// SecretRef names a secret defined elsewhere in the configuration. Note,
// JSON schema validation overrides this to string type.
type SecretRef struct {
	Name  string `json:"-"`
	value *Secret
}

// Resolve retrieves the secret value from the secret store. If the secret is
// not found, an error is returned.
func (s *SecretRef) Resolve(ctx context.Context) (any, error) {
	if s.value == nil {
		return nil, fmt.Errorf("secret %q not found", s.Name)
	}

	return s.value.Typed(ctx)
}

func (s *SecretRef) MarshalYAML() (any, error) {
	if s.Name == "" {
		return nil, nil
	}
	return s.Name, nil
}

func (s *SecretRef) MarshalJSON() ([]byte, error) {
	v, err := s.MarshalYAML()
	if err != nil {
		return nil, err
	}

	return json.Marshal(v)
}

func (s *SecretRef) UnmarshalYAML(bs []byte) error {
	if err := yaml.Unmarshal(bs, &s.Name); err != nil {
		return fmt.Errorf("expected scalar node: %w", err)
	}
	return nil
}

func (s *SecretRef) UnmarshalJSON(bs []byte) error {
	if err := json.Unmarshal(bs, &s.Name); err != nil {
		return fmt.Errorf("failed to unmarshal SecretRef: %w", err)
	}

	return nil
}

func (s *SecretRef) Equal(other *SecretRef) bool {
	return util.FastEqual(s, other, func(s, other *SecretRef) bool {
		return s.Name == other.Name && s.value.Equal(other.value)
	})
}
