package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Deduplicator removes sessions whose id was already seen
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate keeps the first session for each id, preserving order
func (d *Deduplicator) Deduplicate(sessions []Session) []Session {
	seen := make(map[string]bool, len(sessions))
	unique := make([]Session, 0, len(sessions))

	for _, session := range sessions {
		if seen[session.ID] {
			LogDebug("Dropping duplicate session %s", session.ID)
			continue
		}
		seen[session.ID] = true
		unique = append(unique, session)
	}

	return unique
}

// Fingerprint hashes the persisted content of a snapshot so callers can
// tell whether two reads differ
func (d *Deduplicator) Fingerprint(snapshot Snapshot) string {
	h := sha256.New()

	h.Write([]byte(snapshot.CurrentID()))
	for _, session := range snapshot.Sessions {
		h.Write([]byte(session.ID))
		h.Write([]byte(session.Title))
		h.Write([]byte(session.UpdatedAt))
		h.Write([]byte(session.DraftInput))
		h.Write([]byte(session.ModelID))
		for _, msg := range session.Messages {
			h.Write([]byte(msg.ID))
			h.Write([]byte(msg.Role))
			if parts, err := json.Marshal(msg.Parts); err == nil {
				h.Write(parts)
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
