package fs

import (
	"errors"
	"io/fs"
	"os"
	"path"

	"github.com/gobwas/glob"
)

// FSContainsFiles returns true if the given fs.FS contains any files, and false otherwise.
func FSContainsFiles(fsys fs.FS) (bool, error) {
	// errFound is a sentinel error used to stop the walk when a file is found.
	errFound := os.ErrExist

	err := fs.WalkDir(fsys, ".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			// Found a file, so return a special error to stop the walk.
			return errFound
		}
		return nil
	})
	if err == errFound {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// NewFilterFS wraps fsys so that only files matching one of the included
// patterns (all files, if none are given) and none of the excluded patterns
// are visible. Patterns are glob expressions over slash-separated paths;
// `**` crosses directory boundaries. Directories always remain visible so
// walks can descend.
func NewFilterFS(fsys fs.FS, included, excluded []string) (fs.FS, error) {
	inc, err := compileGlobs(included)
	if err != nil {
		return nil, err
	}
	exc, err := compileGlobs(excluded)
	if err != nil {
		return nil, err
	}
	return &filterFS{fsys: fsys, included: inc, excluded: exc}, nil
}

type filterFS struct {
	fsys     fs.FS
	included []glob.Glob
	excluded []glob.Glob
}

func (f *filterFS) Open(name string) (fs.File, error) {
	file, err := f.fsys.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if !info.IsDir() && !f.keep(name) {
		file.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return file, nil
}

func (f *filterFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(f.fsys, name)
	if err != nil {
		return nil, err
	}

	kept := entries[:0:0]
	for _, entry := range entries {
		if entry.IsDir() || f.keep(path.Join(name, entry.Name())) {
			kept = append(kept, entry)
		}
	}
	return kept, nil
}

func (f *filterFS) keep(name string) bool {
	if len(f.included) > 0 && !matchAny(f.included, name) {
		return false
	}
	return !matchAny(f.excluded, name)
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}
