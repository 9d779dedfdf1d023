package fs_test

import (
	"io/fs"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	buildfs "github.com/tracefront/build-plane/internal/fs"
	"github.com/tracefront/build-plane/internal/util"
)

func TestFSContainsFiles(t *testing.T) {
	found, err := buildfs.FSContainsFiles(util.MapFS(map[string]string{"a/b.txt": "x"}))
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("expected files to be found")
	}

	found, err = buildfs.FSContainsFiles(util.MapFS(nil))
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected no files in an empty filesystem")
	}
}

func TestFilterFS(t *testing.T) {
	files := map[string]string{
		"static/app.js":       "x",
		"static/app.js.map":   "x",
		"static/css/main.css": "x",
		"server/app.js.map":   "x",
		"README.md":           "x",
	}

	cases := []struct {
		note     string
		included []string
		excluded []string
		exp      []string
	}{
		{
			note: "no patterns keeps everything",
			exp:  []string{"README.md", "server/app.js.map", "static/app.js", "static/app.js.map", "static/css/main.css"},
		},
		{
			note:     "include static subtree",
			included: []string{"static/**"},
			exp:      []string{"static/app.js", "static/app.js.map", "static/css/main.css"},
		},
		{
			note:     "exclude plain scripts",
			excluded: []string{"**/*.js"},
			exp:      []string{"README.md", "server/app.js.map", "static/app.js.map", "static/css/main.css"},
		},
		{
			note:     "include and exclude combine",
			included: []string{"static/**"},
			excluded: []string{"**/*.css"},
			exp:      []string{"static/app.js", "static/app.js.map"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			fsys, err := buildfs.NewFilterFS(util.MapFS(files), tc.included, tc.excluded)
			if err != nil {
				t.Fatal(err)
			}

			var got []string
			err = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					got = append(got, name)
				}
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}

			slices.Sort(got)
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("unexpected files (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterFSHidesFilteredOpens(t *testing.T) {
	fsys, err := buildfs.NewFilterFS(util.MapFS(map[string]string{"a.js": "x", "a.js.map": "x"}), nil, []string{"*.js"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := fsys.Open("a.js.map"); err != nil {
		t.Errorf("expected kept file to open, got %v", err)
	}
	if _, err := fsys.Open("a.js"); err == nil {
		t.Error("expected filtered file to be hidden")
	}
}

func TestFilterFSBadPattern(t *testing.T) {
	if _, err := buildfs.NewFilterFS(util.MapFS(nil), []string{"["}, nil); err == nil {
		t.Fatal("expected an error for a malformed pattern")
	}
}
