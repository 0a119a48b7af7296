// Package storage persists entity collections as JSON files on disk.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound means the backing file does not exist yet. Callers
	// treat it as an empty collection, not a failure.
	ErrNotFound = errors.New("storage: file not found")

	// ErrCorrupt means the file exists but does not parse.
	ErrCorrupt = errors.New("storage: corrupt file")
)

// File persists one collection of T as a single JSON document. Every
// Save rewrites the whole file; Load reads it back in full.
type File[T any] struct {
	path string
}

func NewFile[T any](dir, name string) *File[T] {
	return &File[T]{path: filepath.Join(dir, name)}
}

func (f *File[T]) Path() string { return f.path }

func (f *File[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return out, nil
}

// Save writes to a temp file in the same directory and renames it over
// the target, so a concurrent reader never observes a partial write.
func (f *File[T]) Save(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}
