// Package artifact implements the bundler plugin that collects debug
// artifacts (emitted bundles and their source maps) after a build and uploads
// them to object storage for symbolication.
//
// The plugin is constructed from user options and attached to a bundler
// configuration by the buildcfg transform; the build pipeline calls Upload
// once the bundler has written its output.
package artifact

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/yalue/merged_fs"

	buildfs "github.com/tracefront/build-plane/internal/fs"
	"github.com/tracefront/build-plane/internal/metrics"
)

// PluginName identifies plugin instances in a bundler's plugin list.
const PluginName = "tracefront-artifact"

// Options configures the artifact plugin. It is treated as opaque by the
// config wrapper and only interpreted here.
type Options struct {
	Org       string   `json:"org"`
	Project   string   `json:"project"`
	Release   string   `json:"release,omitempty"`
	Include   []string `json:"include,omitempty"`
	Ignore    []string `json:"ignore,omitempty"`
	URLPrefix string   `json:"url_prefix,omitempty"`
	DryRun    bool     `json:"dry_run,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

func (o Options) validate() error {
	if o.Org == "" || o.Project == "" {
		return fmt.Errorf("artifact upload requires org and project")
	}
	return nil
}

// Uploader stores one artifact under the given key. internal/s3 satisfies
// this for the supported object storage providers.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, key string) error
}

// Plugin is one artifact-upload plugin instance. Instances are not
// thread-safe; each build target constructs its own.
type Plugin struct {
	opts     Options
	uploader Uploader
	fses     []fs.FS
	onUpload func(path string)
}

// New returns a plugin carrying the given options. Construction never fails;
// option problems surface when Upload runs.
func New(opts Options) *Plugin {
	return &Plugin{opts: opts}
}

// Name implements the bundler plugin identity contract.
func (*Plugin) Name() string {
	return PluginName
}

// Options returns the options the plugin was constructed with.
func (p *Plugin) Options() Options {
	return p.opts
}

// WithUploader sets the storage destination. Without one, Upload runs in
// dry-run mode.
func (p *Plugin) WithUploader(u Uploader) *Plugin {
	p.uploader = u
	return p
}

// WithOnUpload registers a callback invoked per uploaded artifact, used for
// progress reporting.
func (p *Plugin) WithOnUpload(fn func(path string)) *Plugin {
	p.onUpload = fn
	return p
}

// AddDir registers a bundler output directory to scan, applying the plugin's
// include/ignore patterns.
func (p *Plugin) AddDir(dir string) error {
	return p.AddFS(os.DirFS(dir))
}

// AddFS registers a filesystem to scan, applying the plugin's include/ignore
// patterns. When several filesystems are registered, earlier ones shadow
// later ones on path collisions.
func (p *Plugin) AddFS(fsys fs.FS) error {
	filtered, err := buildfs.NewFilterFS(fsys, p.opts.Include, p.opts.Ignore)
	if err != nil {
		return err
	}
	p.fses = append(p.fses, filtered)
	return nil
}

// Upload walks the registered filesystems and stores every visible file,
// returning the number of artifacts handled. A dry run (no uploader, or
// Options.DryRun) walks without storing. An empty scan is not an error.
func (p *Plugin) Upload(ctx context.Context) (int, error) {
	if err := p.opts.validate(); err != nil {
		return 0, err
	}

	merged := merged_fs.MergeMultiple(p.fses...)
	if found, err := buildfs.FSContainsFiles(merged); err != nil {
		return 0, err
	} else if !found {
		return 0, nil
	}

	var count int
	err := fs.WalkDir(merged, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.store(ctx, merged, name); err != nil {
			metrics.ArtifactUploadFailed.WithLabelValues(p.opts.Project).Inc()
			return fmt.Errorf("failed to upload artifact %q: %w", name, err)
		}

		count++
		metrics.ArtifactUploadCount.WithLabelValues(p.opts.Project).Inc()
		if p.onUpload != nil {
			p.onUpload(name)
		}
		return nil
	})
	return count, err
}

func (p *Plugin) store(ctx context.Context, fsys fs.FS, name string) error {
	if p.uploader == nil || p.opts.DryRun {
		return nil
	}

	f, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		metrics.ArtifactUploadBytes.WithLabelValues(p.opts.Project).Add(float64(info.Size()))
	}

	return p.uploader.Upload(ctx, f, p.Key(name))
}

// Key returns the storage key for an artifact path:
// <org>/<project>/<release>/<path>, with the URL prefix folded in when set.
func (p *Plugin) Key(name string) string {
	release := cmp.Or(p.opts.Release, "unversioned")
	return path.Join(p.opts.Org, p.opts.Project, release, p.opts.URLPrefix, name)
}
