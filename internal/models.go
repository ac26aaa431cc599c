package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// SnapshotVersion is the only persisted layout this build reads or writes
	SnapshotVersion = 1
	// DefaultStorageKey is the slot key the snapshot lives under
	DefaultStorageKey = "v0-chat-history"
	// isoLayout matches the millisecond UTC form produced by toISOString
	isoLayout = "2006-01-02T15:04:05.000Z"
)

// StoredMessage is the persisted form of a Message
type StoredMessage struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Parts     []Part `json:"parts"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// StoredSession is the persisted form of a Session
type StoredSession struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
	Messages   []StoredMessage `json:"messages"`
	ModelID    string          `json:"modelId,omitempty"`
	DraftInput string          `json:"draftInput,omitempty"`
}

// Snapshot is the single serialized blob holding all persisted sessions
// plus the active selection
type Snapshot struct {
	Version       int             `json:"version"`
	CurrentChatID *string         `json:"currentChatId"`
	Sessions      []StoredSession `json:"sessions"`
}

// EmptySnapshot returns a fresh empty snapshot
func EmptySnapshot() Snapshot {
	return Snapshot{
		Version:  SnapshotVersion,
		Sessions: []StoredSession{},
	}
}

// CurrentID returns the selected session id or "" when none is selected
func (s Snapshot) CurrentID() string {
	if s.CurrentChatID == nil {
		return ""
	}
	return *s.CurrentChatID
}

// ParseSnapshot decodes and validates a persisted payload
func ParseSnapshot(key string, data []byte) (Snapshot, error) {
	if err := validateSnapshot(data); err != nil {
		return EmptySnapshot(), &ParseError{Source: "snapshot", Key: key, Err: err}
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return EmptySnapshot(), &ParseError{Source: "snapshot", Key: key, Err: err}
	}
	if snapshot.Sessions == nil {
		snapshot.Sessions = []StoredSession{}
	}

	return snapshot, nil
}

// MarshalSnapshot encodes a snapshot, always stamping the current version
func MarshalSnapshot(snapshot Snapshot) ([]byte, error) {
	payload := Snapshot{
		Version:       SnapshotVersion,
		CurrentChatID: snapshot.CurrentChatID,
		Sessions:      snapshot.Sessions,
	}
	if payload.Sessions == nil {
		payload.Sessions = []StoredSession{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// SerializeSession converts a session to its persisted form
func SerializeSession(session Session) StoredSession {
	messages := make([]StoredMessage, 0, len(session.Messages))
	for _, msg := range session.Messages {
		messages = append(messages, serializeMessage(msg))
	}
	return StoredSession{
		ID:         session.ID,
		Title:      session.Title,
		CreatedAt:  formatTime(session.CreatedAt),
		UpdatedAt:  formatTime(session.UpdatedAt),
		Messages:   messages,
		ModelID:    session.ModelID,
		DraftInput: session.DraftInput,
	}
}

// DeserializeSession converts a persisted session back to a Session
func DeserializeSession(stored StoredSession) Session {
	messages := make([]Message, 0, len(stored.Messages))
	for _, msg := range stored.Messages {
		messages = append(messages, deserializeMessage(msg))
	}
	return Session{
		ID:         stored.ID,
		Title:      stored.Title,
		CreatedAt:  parseTime(stored.CreatedAt),
		UpdatedAt:  parseTime(stored.UpdatedAt),
		Messages:   messages,
		ModelID:    stored.ModelID,
		DraftInput: stored.DraftInput,
	}
}

func serializeMessage(msg Message) StoredMessage {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return StoredMessage{
		ID:        msg.ID,
		Role:      msg.Role,
		Parts:     msg.Parts,
		CreatedAt: formatTime(createdAt),
	}
}

func deserializeMessage(stored StoredMessage) Message {
	msg := Message{
		ID:    stored.ID,
		Role:  stored.Role,
		Parts: stored.Parts,
	}
	if stored.CreatedAt != "" {
		msg.CreatedAt = parseTime(stored.CreatedAt)
	}
	return msg
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// parseTime parses an ISO-8601 timestamp, falling back to now when unparseable
func parseTime(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Now()
	}
	return t
}

// UnmarshalJSON decodes a stored message field by field. A createdAt that is
// not a string falls back to the decode time and parts that do not decode
// are skipped, so one odd message never discards the snapshot.
func (m *StoredMessage) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*m = StoredMessage{}
	m.ID, _ = lenientString(fields["id"])
	role, _ := lenientString(fields["role"])
	m.Role = Role(role)

	if raw, ok := fields["createdAt"]; ok {
		if s, isString := lenientString(raw); isString {
			m.CreatedAt = s
		} else if !isJSONNull(raw) {
			m.CreatedAt = formatTime(time.Now())
		}
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(fields["parts"], &parts); err != nil || parts == nil {
		return nil
	}
	m.Parts = make([]Part, 0, len(parts))
	for _, raw := range parts {
		var part Part
		if err := json.Unmarshal(raw, &part); err != nil {
			continue
		}
		m.Parts = append(m.Parts, part)
	}
	return nil
}

// lenientString returns raw as a string and whether it was one
func lenientString(raw json.RawMessage) (string, bool) {
	if !isJSONKind(raw, '"') {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// isJSONKind reports whether raw starts with the given JSON token
func isJSONKind(raw json.RawMessage, first byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == first
}
