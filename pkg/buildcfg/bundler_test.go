package buildcfg_test

import (
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/tracefront/build-plane/pkg/buildcfg"
)

func TestEntrySpecShapes(t *testing.T) {
	cases := []struct {
		note string
		in   string
		exp  buildcfg.EntrySpec
		out  string
	}{
		{
			note: "bare string stays bare",
			in:   `./src/index.ts`,
			exp:  buildcfg.Single("./src/index.ts"),
			out:  "./src/index.ts\n",
		},
		{
			note: "single-element list stays a list",
			in:   "- ./src/index.ts",
			exp:  buildcfg.List("./src/index.ts"),
			out:  "- ./src/index.ts\n",
		},
		{
			note: "empty list stays present",
			in:   "[]",
			exp:  buildcfg.List(),
			out:  "[]\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			var spec buildcfg.EntrySpec
			if err := yaml.Unmarshal([]byte(tc.in), &spec); err != nil {
				t.Fatal(err)
			}
			if !spec.Equal(tc.exp) {
				t.Fatalf("expected %v, got %v", tc.exp.Modules(), spec.Modules())
			}

			bs, err := yaml.Marshal(spec)
			if err != nil {
				t.Fatal(err)
			}
			if string(bs) != tc.out {
				t.Errorf("expected marshaled form %q, got %q", tc.out, string(bs))
			}
		})
	}
}

type pluginMock string

func (p pluginMock) Name() string { return string(p) }

func TestBundlerConfigClone(t *testing.T) {
	cfg := &buildcfg.BundlerConfig{
		Target:  "client",
		Plugins: []buildcfg.Plugin{pluginMock("a")},
	}

	cpy := cfg.Clone()
	cpy.Plugins = append(cpy.Plugins, pluginMock("b"))

	if len(cfg.Plugins) != 1 {
		t.Errorf("appending to the clone affected the original: %d plugins", len(cfg.Plugins))
	}
	if !cpy.HasPlugin("b") || cpy.HasPlugin("c") {
		t.Error("unexpected HasPlugin results")
	}

	var nilCfg *buildcfg.BundlerConfig
	if out := nilCfg.Clone(); out == nil {
		t.Error("expected a usable clone of nil")
	}
}
