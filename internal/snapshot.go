package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SnapshotCodec reads and writes the session snapshot under a single slot key.
// Reads never fail: anything unreadable comes back as an empty snapshot.
type SnapshotCodec struct {
	slot Slot
	key  string
}

// NewSnapshotCodec creates a codec over slot. An empty key selects DefaultStorageKey.
// A nil slot behaves like an unavailable storage medium.
func NewSnapshotCodec(slot Slot, key string) *SnapshotCodec {
	if key == "" {
		key = DefaultStorageKey
	}
	return &SnapshotCodec{slot: slot, key: key}
}

// Key returns the slot key the codec reads and writes
func (c *SnapshotCodec) Key() string {
	return c.key
}

// Read returns the stored snapshot, or an empty one when the slot is
// unavailable, the key is missing, or the payload is invalid
func (c *SnapshotCodec) Read(ctx context.Context) Snapshot {
	snapshot, err := c.Load(ctx)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		logger.Warn("snapshot_read_failed", zap.String("key", c.key), zap.Error(err))
	}
	return snapshot
}

// Load is Read with the failure reason exposed. The returned snapshot is
// always usable.
func (c *SnapshotCodec) Load(ctx context.Context) (Snapshot, error) {
	if c.slot == nil {
		return EmptySnapshot(), &StorageError{Key: c.key, Op: "get", Err: ErrStoreClosed}
	}

	data, err := c.slot.Get(ctx, c.key)
	if err != nil {
		return EmptySnapshot(), err
	}
	if len(data) == 0 {
		return EmptySnapshot(), ErrKeyNotFound
	}

	return ParseSnapshot(c.key, data)
}

// Write overwrites the slot with the snapshot. Failures are logged and swallowed.
func (c *SnapshotCodec) Write(ctx context.Context, snapshot Snapshot) {
	if err := c.Save(ctx, snapshot); err != nil {
		logger.Warn("snapshot_write_failed", zap.String("key", c.key), zap.Error(err))
	}
}

// Save is Write with the error returned
func (c *SnapshotCodec) Save(ctx context.Context, snapshot Snapshot) error {
	if c.slot == nil {
		return &StorageError{Key: c.key, Op: "set", Err: ErrStoreClosed}
	}

	data, err := MarshalSnapshot(snapshot)
	if err != nil {
		return err
	}
	return c.slot.Set(ctx, c.key, data)
}

// Clear removes the snapshot key. Failures are logged and swallowed.
func (c *SnapshotCodec) Clear(ctx context.Context) {
	if c.slot == nil {
		return
	}
	if err := c.slot.Delete(ctx, c.key); err != nil {
		logger.Warn("snapshot_clear_failed", zap.String("key", c.key), zap.Error(err))
	}
}

// validateSnapshot checks the structural shape of a payload before it is decoded
func validateSnapshot(data []byte) error {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if root == nil {
		return &ValidationError{Field: "snapshot", Reason: "payload is null"}
	}

	version, ok := root["version"]
	if !ok || !isJSONNumber(version) {
		return &ValidationError{Field: "version", Reason: "missing or not a number"}
	}
	var v float64
	if err := json.Unmarshal(version, &v); err != nil || v != SnapshotVersion {
		return &ValidationError{Field: "version", Reason: fmt.Sprintf("unsupported version %s", string(version))}
	}

	sessions, ok := root["sessions"]
	if !ok || !isJSONKind(sessions, '[') {
		return &ValidationError{Field: "sessions", Reason: "missing or not an array"}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(sessions, &entries); err != nil {
		return &ValidationError{Field: "sessions", Reason: err.Error()}
	}

	for i, entry := range entries {
		if err := validateStoredSession(entry); err != nil {
			return fmt.Errorf("sessions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStoredSession(raw json.RawMessage) error {
	if !isJSONKind(raw, '{') {
		return &ValidationError{Field: "session", Reason: "not an object"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return &ValidationError{Field: "session", Reason: err.Error()}
	}

	for _, name := range []string{"id", "title", "createdAt", "updatedAt"} {
		value, ok := fields[name]
		if !ok || !isJSONKind(value, '"') {
			return &ValidationError{Field: name, Reason: "missing or not a string"}
		}
	}
	if messages, ok := fields["messages"]; !ok || !isJSONKind(messages, '[') {
		return &ValidationError{Field: "messages", Reason: "missing or not an array"}
	}
	return nil
}

func isJSONNumber(raw json.RawMessage) bool {
	b := firstByte(raw)
	return b == '-' || (b >= '0' && b <= '9')
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
