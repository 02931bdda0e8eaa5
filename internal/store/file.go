package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// FileBackend keeps one file per object under Dir. Writes go through a
// temporary file and a rename so readers never see a partial document.
type FileBackend struct {
	Dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{Dir: dir}, nil
}

func (f *FileBackend) path(key string) (string, error) {
	if key == "" || filepath.Base(key) != key || key == "." || key == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(f.Dir, key), nil
}

func (f *FileBackend) Load(ctx context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (f *FileBackend) Save(ctx context.Context, key string, data []byte) (string, error) {
	p, err := f.path(key)
	if err != nil {
		return "", err
	}
	if err := atomic.WriteFile(p, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return p, nil
}

func (f *FileBackend) Delete(ctx context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Ping reports whether the data directory is reachable.
func (f *FileBackend) Ping(ctx context.Context) error {
	_, err := os.Stat(f.Dir)
	return err
}
