package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{
		Key: "v0-chat-history",
		Op:  "set",
		Err: originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "storage error") {
		t.Errorf("StorageError.Error() should contain 'storage error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "v0-chat-history") {
		t.Errorf("StorageError.Error() should contain key, got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "set") {
		t.Errorf("StorageError.Error() should contain operation, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("StorageError.Unwrap() should return original error")
	}
}

func TestParseError(t *testing.T) {
	originalErr := errors.New("unexpected end of JSON input")
	err := &ParseError{
		Source: "snapshot",
		Key:    "v0-chat-history",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "parse error") {
		t.Errorf("ParseError.Error() should contain 'parse error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "snapshot") {
		t.Errorf("ParseError.Error() should contain source, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("ParseError.Unwrap() should return original error")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "version", Reason: "unsupported version 2"}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "version") || !strings.Contains(errorMsg, "unsupported") {
		t.Errorf("ValidationError.Error() = %q", errorMsg)
	}

	wrapped := &ParseError{Source: "snapshot", Err: err}
	var target *ValidationError
	if !errors.As(wrapped, &target) {
		t.Error("ValidationError should be reachable through ParseError")
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "jsonl",
		Path:   "/output/file.jsonl",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "jsonl") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{ErrInvalidConfig, ErrInvalidSlotType, ErrKeyNotFound, ErrStoreClosed, ErrEmptyMessage}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
