package buildcfg_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tracefront/build-plane/pkg/buildcfg"
)

var entryCmp = cmp.Comparer(func(a, b buildcfg.EntrySpec) bool { return a.Equal(b) })

func TestInjectEntriesClient(t *testing.T) {
	cases := []struct {
		note string
		orig buildcfg.EntryMap
		exp  buildcfg.EntryMap
	}{
		{
			note: "no entries",
			orig: nil,
			exp: buildcfg.EntryMap{
				"main": buildcfg.List("./tracefront.client.config.js"),
			},
		},
		{
			note: "bare string main",
			orig: buildcfg.EntryMap{
				"main": buildcfg.Single("./src/index.ts"),
			},
			exp: buildcfg.EntryMap{
				"main": buildcfg.List("./src/index.ts", "./tracefront.client.config.js"),
			},
		},
		{
			note: "list main keeps order",
			orig: buildcfg.EntryMap{
				"main": buildcfg.List("./a.js", "./b.js"),
			},
			exp: buildcfg.EntryMap{
				"main": buildcfg.List("./a.js", "./b.js", "./tracefront.client.config.js"),
			},
		},
		{
			note: "empty main list",
			orig: buildcfg.EntryMap{
				"main": buildcfg.List(),
			},
			exp: buildcfg.EntryMap{
				"main": buildcfg.List("./tracefront.client.config.js"),
			},
		},
		{
			note: "legacy main.js folds in front of main",
			orig: buildcfg.EntryMap{
				"main":    buildcfg.Single("./src/index.ts"),
				"main.js": buildcfg.Single("./legacy.config.js"),
			},
			exp: buildcfg.EntryMap{
				"main":    buildcfg.List("./legacy.config.js", "./src/index.ts", "./tracefront.client.config.js"),
				"main.js": buildcfg.List(),
			},
		},
		{
			note: "legacy main.js without main",
			orig: buildcfg.EntryMap{
				"main.js": buildcfg.List("./legacy.config.js"),
			},
			exp: buildcfg.EntryMap{
				"main":    buildcfg.List("./legacy.config.js", "./tracefront.client.config.js"),
				"main.js": buildcfg.List(),
			},
		},
		{
			note: "unrelated bundles pass through untouched",
			orig: buildcfg.EntryMap{
				"main":  buildcfg.Single("./src/index.ts"),
				"admin": buildcfg.Single("./src/admin.ts"),
			},
			exp: buildcfg.EntryMap{
				"main":  buildcfg.List("./src/index.ts", "./tracefront.client.config.js"),
				"admin": buildcfg.Single("./src/admin.ts"),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			fn := buildcfg.InjectEntries(buildcfg.StaticEntries(tc.orig), buildcfg.BuildContext{})
			got, err := fn(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.exp, got, entryCmp); diff != "" {
				t.Errorf("unexpected entries (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInjectEntriesServer(t *testing.T) {
	orig := buildcfg.EntryMap{
		"main":    buildcfg.Single("./src/index.ts"),
		"main.js": buildcfg.Single("./legacy.config.js"),
	}

	fn := buildcfg.InjectEntries(buildcfg.StaticEntries(orig), buildcfg.BuildContext{IsServer: true})
	got, err := fn(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Server injection adds its own bundle and leaves everything else alone,
	// including the legacy auxiliary entry.
	exp := buildcfg.EntryMap{
		"main":                   buildcfg.Single("./src/index.ts"),
		"main.js":                buildcfg.Single("./legacy.config.js"),
		"tracefront/init-server": buildcfg.List("./tracefront.server.config.js"),
	}
	if diff := cmp.Diff(exp, got, entryCmp); diff != "" {
		t.Errorf("unexpected entries (-want +got):\n%s", diff)
	}
}

func TestInjectEntriesServerListForm(t *testing.T) {
	fn := buildcfg.InjectEntries(nil, buildcfg.BuildContext{IsServer: true})
	got, err := fn(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// The injected bundle is touched by definition, so it carries the list
	// form even with a single module.
	if e := got["tracefront/init-server"]; !e.IsList() {
		t.Errorf("expected the server entry in list form, got bare modules %v", e.Modules())
	}
}

func TestInjectEntriesLazy(t *testing.T) {
	var calls int
	orig := func(context.Context) (buildcfg.EntryMap, error) {
		calls++
		return buildcfg.EntryMap{"main": buildcfg.Single("./src/index.ts")}, nil
	}

	fn := buildcfg.InjectEntries(orig, buildcfg.BuildContext{})
	if calls != 0 {
		t.Fatalf("expected original entry function to stay uncalled until resolution, got %d calls", calls)
	}

	if _, err := fn(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call to the original entry function, got %d", calls)
	}
}

func TestInjectEntriesError(t *testing.T) {
	boom := errors.New("entry resolution failed")
	fn := buildcfg.InjectEntries(func(context.Context) (buildcfg.EntryMap, error) {
		return nil, boom
	}, buildcfg.BuildContext{})

	if _, err := fn(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected original error to propagate, got %v", err)
	}
}

func TestInjectEntriesNilOriginal(t *testing.T) {
	fn := buildcfg.InjectEntries(nil, buildcfg.BuildContext{})
	got, err := fn(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	exp := buildcfg.EntryMap{"main": buildcfg.List("./tracefront.client.config.js")}
	if diff := cmp.Diff(exp, got, entryCmp); diff != "" {
		t.Errorf("unexpected entries (-want +got):\n%s", diff)
	}
}

func TestInjectEntriesDoesNotMutateOriginal(t *testing.T) {
	orig := buildcfg.EntryMap{
		"main":    buildcfg.Single("./src/index.ts"),
		"main.js": buildcfg.Single("./legacy.config.js"),
	}

	fn := buildcfg.InjectEntries(buildcfg.StaticEntries(orig), buildcfg.BuildContext{})
	if _, err := fn(context.Background()); err != nil {
		t.Fatal(err)
	}

	exp := buildcfg.EntryMap{
		"main":    buildcfg.Single("./src/index.ts"),
		"main.js": buildcfg.Single("./legacy.config.js"),
	}
	if diff := cmp.Diff(exp, orig, entryCmp); diff != "" {
		t.Errorf("original entry map changed (-want +got):\n%s", diff)
	}
}
