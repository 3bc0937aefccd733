package store

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
)

// File is a KV that keeps one file per key in a directory.
type File struct {
	mu  sync.RWMutex
	dir string
}

// NewFile creates the directory if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create store directory")
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

// Get reads the file for key.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %q", key)
	}
	return data, nil
}

// Put writes value atomically via temp file + rename.
func (f *File) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, value, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %q", key)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to write %q", key)
	}
	return nil
}

// Delete removes the file for key.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete %q", key)
	}
	return nil
}

// Close is a no-op.
func (f *File) Close() error {
	return nil
}
