package internal

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTitle is the title given to sessions created without one
const DefaultSessionTitle = "Untitled chat"

// HistoryOption is a functional option for configuring a HistoryStore
type HistoryOption func(*historyConfig)

type historyConfig struct {
	now   func() time.Time
	newID func() string
}

func defaultHistoryConfig() *historyConfig {
	return &historyConfig{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) HistoryOption {
	return func(c *historyConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides how session ids are generated
func WithIDGenerator(newID func() string) HistoryOption {
	return func(c *historyConfig) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// CreateOptions configures CreateSession. Zero values select the defaults.
type CreateOptions struct {
	ID              string
	Title           string
	ModelID         string
	DraftInput      string
	InitialMessages []Message
	// Background creates the session without selecting it
	Background bool
}

// UpdateOption configures UpdateMessages
type UpdateOption func(*updateConfig)

type updateConfig struct {
	updatedAt  time.Time
	draftInput *string
}

// WithUpdatedAt sets the session's UpdatedAt instead of now
func WithUpdatedAt(t time.Time) UpdateOption {
	return func(c *updateConfig) {
		c.updatedAt = t
	}
}

// WithDraftInput overwrites the session's draft. An empty draft clears it.
func WithDraftInput(draft string) UpdateOption {
	return func(c *updateConfig) {
		c.draftInput = &draft
	}
}
