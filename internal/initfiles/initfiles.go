// Package initfiles locates the application's Tracefront initialization
// modules on disk and records where the server-side one lives so that the
// runtime half of the product can load it.
package initfiles

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	serverConfigBase = "tracefront.server.config"
	clientConfigBase = "tracefront.client.config"
)

// Extensions the host toolchain resolves for config modules, in resolution
// order.
var extensions = []string{".js", ".mjs", ".cjs", ".ts"}

// FindServerConfig returns the path of the server initialization module in
// dir, or "" if none exists.
func FindServerConfig(dir string) (string, error) {
	return find(dir, serverConfigBase)
}

// FindClientConfig returns the path of the client initialization module in
// dir, or "" if none exists.
func FindClientConfig(dir string) (string, error) {
	return find(dir, clientConfigBase)
}

func find(dir, base string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

// PathRecorder remembers the first server init path reported to it. Repeat
// calls are no-ops, so both wrap invocations of a dual-target build can
// report safely.
type PathRecorder struct {
	mu   sync.Mutex
	path string
}

func (r *PathRecorder) RecordServerInitPath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.path == "" {
		r.path = path
	}
}

// ServerInitPath returns the recorded path, or "" if nothing has been
// recorded yet.
func (r *PathRecorder) ServerInitPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

var shared PathRecorder

// SharedRecorder returns the process-wide recorder consulted by the runtime
// loader.
func SharedRecorder() *PathRecorder {
	return &shared
}
