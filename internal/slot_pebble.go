package internal

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

// PebbleSlot stores payloads in a pebble database
type PebbleSlot struct {
	db   *pebble.DB
	path string
}

// NewPebbleSlot opens (or creates) a pebble database at path
func NewPebbleSlot(path string) (*PebbleSlot, error) {
	logger.Debug("opening_pebble_db", zap.String("path", path))
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return nil, &StorageError{Key: path, Op: "open", Err: err}
	}
	return &PebbleSlot{db: db, path: path}, nil
}

// Get implements Slot.
func (s *PebbleSlot) Get(ctx context.Context, key string) ([]byte, error) {
	if s.db == nil {
		return nil, &StorageError{Key: key, Op: "get", Err: ErrStoreClosed}
	}
	value, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, &StorageError{Key: key, Op: "get", Err: err}
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set implements Slot.
func (s *PebbleSlot) Set(ctx context.Context, key string, value []byte) error {
	if s.db == nil {
		return &StorageError{Key: key, Op: "set", Err: ErrStoreClosed}
	}
	if err := s.db.Set([]byte(key), value, pebble.Sync); err != nil {
		logger.Error("pebble_set_failed", zap.String("key", key), zap.Error(err))
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements Slot.
func (s *PebbleSlot) Delete(ctx context.Context, key string) error {
	if s.db == nil {
		return &StorageError{Key: key, Op: "delete", Err: ErrStoreClosed}
	}
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close implements Slot.
func (s *PebbleSlot) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	logger.Debug("pebble_closed", zap.String("path", s.path))
	return err
}
