package buildcfg_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tracefront/build-plane/pkg/artifact"
	"github.com/tracefront/build-plane/pkg/buildcfg"
)

func TestTransformBundlerConfig(t *testing.T) {
	opts := artifact.Options{Org: "acme", Project: "storefront"}

	cases := []struct {
		note       string
		bctx       buildcfg.BuildContext
		control    buildcfg.PluginControl
		expDevtool string
		expPlugin  bool
		expInclude []string
		expRelease string
	}{
		{
			note:       "client",
			bctx:       buildcfg.BuildContext{BuildID: "v1"},
			expDevtool: "hidden-source-map",
			expPlugin:  true,
			expInclude: []string{"static/**"},
			expRelease: "v1",
		},
		{
			note:       "server",
			bctx:       buildcfg.BuildContext{IsServer: true, BuildID: "v1"},
			expDevtool: "hidden-source-map",
			expPlugin:  true,
			expInclude: []string{"server/**"},
			expRelease: "v1",
		},
		{
			note:       "client disabled",
			bctx:       buildcfg.BuildContext{},
			control:    buildcfg.PluginControl{DisableClient: true},
			expDevtool: "eval",
			expPlugin:  false,
		},
		{
			note:       "server disabled",
			bctx:       buildcfg.BuildContext{IsServer: true},
			control:    buildcfg.PluginControl{DisableServer: true},
			expDevtool: "eval",
			expPlugin:  false,
		},
		{
			note:       "client disable does not affect server",
			bctx:       buildcfg.BuildContext{IsServer: true},
			control:    buildcfg.PluginControl{DisableClient: true},
			expDevtool: "hidden-source-map",
			expPlugin:  true,
			expInclude: []string{"server/**"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			cfg := &buildcfg.BundlerConfig{
				Devtool: "eval",
				Entry:   buildcfg.StaticEntries(buildcfg.EntryMap{"main": buildcfg.Single("./src/index.ts")}),
			}

			out := buildcfg.TransformBundlerConfig(cfg, tc.bctx, opts, tc.control)

			if out.Devtool != tc.expDevtool {
				t.Errorf("expected devtool %q, got %q", tc.expDevtool, out.Devtool)
			}

			if got := out.HasPlugin(artifact.PluginName); got != tc.expPlugin {
				t.Errorf("expected plugin attached=%v, got %v", tc.expPlugin, got)
			}

			if tc.expPlugin {
				p := out.Plugins[len(out.Plugins)-1].(*artifact.Plugin)
				popts := p.Options()
				if popts.Org != "acme" || popts.Project != "storefront" {
					t.Errorf("unexpected plugin options: %+v", popts)
				}
				if popts.Release != tc.expRelease {
					t.Errorf("expected release %q, got %q", tc.expRelease, popts.Release)
				}
				if diff := cmp.Diff(tc.expInclude, popts.Include); diff != "" {
					t.Errorf("unexpected include patterns (-want +got):\n%s", diff)
				}
			}

			// Entries are injected regardless of plugin control.
			entries, err := out.Entry.Resolve(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if tc.bctx.IsServer {
				if _, ok := entries["tracefront/init-server"]; !ok {
					t.Error("expected server init entry to be injected")
				}
			} else {
				mods := entries["main"].Modules()
				if len(mods) == 0 || mods[len(mods)-1] != "./tracefront.client.config.js" {
					t.Errorf("expected client init module appended to main, got %v", mods)
				}
			}

			// The input configuration stays untouched.
			if cfg.Devtool != "eval" || len(cfg.Plugins) != 0 {
				t.Errorf("input configuration was mutated: %+v", cfg)
			}
		})
	}
}

func TestTransformKeepsUserOptions(t *testing.T) {
	opts := artifact.Options{
		Org:     "acme",
		Project: "storefront",
		Release: "explicit",
		Include: []string{"custom/**"},
	}

	out := buildcfg.TransformBundlerConfig(&buildcfg.BundlerConfig{}, buildcfg.BuildContext{BuildID: "v1"}, opts, buildcfg.PluginControl{})

	p := out.Plugins[0].(*artifact.Plugin)
	if got := p.Options().Release; got != "explicit" {
		t.Errorf("expected explicit release to win over build id, got %q", got)
	}
	if diff := cmp.Diff([]string{"custom/**"}, p.Options().Include); diff != "" {
		t.Errorf("unexpected include patterns (-want +got):\n%s", diff)
	}
}

func TestTransformExtraPassthrough(t *testing.T) {
	extra := map[string]any{"optimization": "aggressive"}
	cfg := &buildcfg.BundlerConfig{Extra: extra}

	out := buildcfg.TransformBundlerConfig(cfg, buildcfg.BuildContext{}, artifact.Options{Org: "a", Project: "p"}, buildcfg.PluginControl{})

	if diff := cmp.Diff(extra, out.Extra); diff != "" {
		t.Errorf("extra options changed (-want +got):\n%s", diff)
	}
}

func TestTransformPerTargetIndependence(t *testing.T) {
	opts := artifact.Options{Org: "acme", Project: "storefront"}
	cfg := &buildcfg.BundlerConfig{}

	client := buildcfg.TransformBundlerConfig(cfg, buildcfg.BuildContext{}, opts, buildcfg.PluginControl{})
	server := buildcfg.TransformBundlerConfig(cfg, buildcfg.BuildContext{IsServer: true}, opts, buildcfg.PluginControl{})

	if client.Plugins[0] == server.Plugins[0] {
		t.Error("expected each target to get its own plugin instance")
	}
	if len(cfg.Plugins) != 0 {
		t.Errorf("shared input configuration accumulated plugins: %d", len(cfg.Plugins))
	}
}
