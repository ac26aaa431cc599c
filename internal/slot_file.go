package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSlot stores each key as a JSON file inside a directory.
// Writes go to a temp file first and are renamed into place.
type FileSlot struct {
	dir string
}

// NewFileSlot creates a file slot rooted at dir, creating it if needed
func NewFileSlot(dir string) (*FileSlot, error) {
	fs := &FileSlot{dir: dir}
	if err := fs.EnsureDir(); err != nil {
		return nil, &StorageError{Key: dir, Op: "open", Err: err}
	}
	return fs, nil
}

// EnsureDir ensures the slot directory exists
func (fs *FileSlot) EnsureDir() error {
	return os.MkdirAll(fs.dir, 0755)
}

// Dir returns the slot directory
func (fs *FileSlot) Dir() string {
	return fs.dir
}

// PathFor returns the file backing a key
func (fs *FileSlot) PathFor(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(fs.dir, fmt.Sprintf("%s.json", safe))
}

// Get implements Slot.
func (fs *FileSlot) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(fs.PathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, &StorageError{Key: key, Op: "get", Err: err}
	}
	return data, nil
}

// Set implements Slot.
func (fs *FileSlot) Set(ctx context.Context, key string, value []byte) error {
	if err := fs.EnsureDir(); err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}

	tmp, err := os.CreateTemp(fs.dir, ".slot-*.tmp")
	if err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	if err := os.Rename(tmpPath, fs.PathFor(key)); err != nil {
		_ = os.Remove(tmpPath)
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements Slot.
func (fs *FileSlot) Delete(ctx context.Context, key string) error {
	if err := os.Remove(fs.PathFor(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close implements Slot.
func (fs *FileSlot) Close() error {
	return nil
}
