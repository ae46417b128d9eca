package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ImageStore writes annotated frames under a run directory.
type ImageStore struct {
	dir     string
	mu      sync.Mutex
	written int
}

// NewImageStore creates an ImageStore rooted at dir.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Dir returns the store's root directory.
func (s *ImageStore) Dir() string {
	return s.dir
}

// WriteImage stores data as dir/subdir/name and returns the full path.
// subdir may be empty.
func (s *ImageStore) WriteImage(subdir, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := filepath.Join(s.dir, subdir)
	if err := os.MkdirAll(target, 0755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	fullpath := filepath.Join(target, filepath.Base(name))
	if err := os.WriteFile(fullpath, data, 0644); err != nil {
		return "", fmt.Errorf("save image %s: %w", name, err)
	}
	s.written++
	return fullpath, nil
}

// Written reports how many images were stored.
func (s *ImageStore) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Exists reports whether a previously written image is still on disk.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
