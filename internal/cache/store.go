// Package cache owns the local archive layout: deterministic paths under
// the save directory and the content-addressed names of subset files.
// File access goes through a billy.Filesystem so the layout is testable
// against an in-memory filesystem.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/gale/api"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Store wraps the cache filesystem. The production store is rooted at
// the OS filesystem root so billy paths coincide with absolute OS paths.
type Store struct {
	FS billy.Filesystem
}

// New returns a store backed by the real filesystem.
func New() *Store {
	return &Store{FS: osfs.New("/")}
}

// NewWithFS returns a store backed by an arbitrary filesystem, used by
// tests with memfs.
func NewWithFS(fs billy.Filesystem) *Store {
	return &Store{FS: fs}
}

// Exists reports whether path names a non-empty regular file.
func (s *Store) Exists(path string) bool {
	info, err := s.FS.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Size returns the file's size, or -1 when it cannot be read.
func (s *Store) Size(path string) int64 {
	info, err := s.FS.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

// Create opens path for writing, creating parent directories first.
// MkdirAll tolerates concurrent creators.
func (s *Store) Create(path string) (billy.File, error) {
	if err := s.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return s.FS.Create(path)
}

// Open opens path for reading.
func (s *Store) Open(path string) (billy.File, error) {
	return s.FS.Open(path)
}

// WriteFile writes data to path, creating parent directories.
func (s *Store) WriteFile(path string, data []byte) error {
	f, err := s.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads the whole file at path.
func (s *Store) ReadFile(path string) ([]byte, error) {
	f, err := s.FS.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Remove deletes path, ignoring files that are already gone.
func (s *Store) Remove(path string) error {
	err := s.FS.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// ResolveLocal returns the on-disk path for the request, honoring
// template sources tagged local*: when such a source's URL names an
// existing file, that file supersedes the computed cache path.
func (s *Store) ResolveLocal(req *api.Request, tmpl *api.Template) string {
	for _, src := range tmpl.Sources {
		if strings.HasPrefix(src.Name, "local") && s.Exists(src.URL) {
			return src.URL
		}
	}
	return Path(req, tmpl)
}
