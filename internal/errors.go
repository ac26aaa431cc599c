package internal

import (
	"errors"
	"fmt"
)

// Common errors for slot and store operations.
var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidSlotType = errors.New("invalid slot type")
	ErrKeyNotFound     = errors.New("key not found")
	ErrStoreClosed     = errors.New("store closed")
	ErrEmptyMessage    = errors.New("empty message")
)

// StorageError represents errors accessing the durable slot
type StorageError struct {
	Key string
	Op  string // "open", "get", "set", "delete"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing persisted or streamed data
type ParseError struct {
	Source string // "snapshot", "panel-items", "events"
	Key    string // storage key, event index or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a snapshot that decoded but failed structural checks
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Reason)
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
