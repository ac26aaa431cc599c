package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DashboardMarker in an unknown delta's text reveals the panel
const DashboardMarker = "[dashboard]"

var (
	ErrMalformedItems = errors.New("malformed panel items")
	ErrInvalidStatus  = errors.New("invalid panel status")
)

// Fold applies one event to s. On a malformed payload it returns s unchanged
// together with the reason; the event still counts as consumed.
func Fold(s State, e Event) (State, error) {
	return fold(s, e, DashboardMarker)
}

func fold(s State, e Event, marker string) (State, error) {
	switch e.Type {
	case EventOpen:
		s.Visible = true
		s.Status = StatusStreaming
	case EventClose:
		s.Visible = false
		s.Status = StatusIdle
	case EventReset:
		return Initial(), nil
	case EventTitle:
		s.Title = e.Content
	case EventSummary:
		s.Summary = e.Content
	case EventItems:
		var items []Item
		if err := json.Unmarshal([]byte(e.Content), &items); err != nil {
			return s, fmt.Errorf("%w: %v", ErrMalformedItems, err)
		}
		if items == nil {
			// "null" decodes without error but is not an array
			return s, fmt.Errorf("%w: content is not an array", ErrMalformedItems)
		}
		s.Items = items
		s.Visible = true
	case EventStatus:
		status := Status(e.Content)
		if !status.Valid() {
			return s, fmt.Errorf("%w: %q", ErrInvalidStatus, e.Content)
		}
		s.Status = status
	default:
		if marker != "" && strings.Contains(strings.ToLower(e.Content), strings.ToLower(marker)) {
			s.Visible = true
		}
	}
	return s, nil
}

// Option configures a Reducer
type Option func(*Reducer)

// WithLogger sets the logger for dropped events
func WithLogger(l *zap.Logger) Option {
	return func(r *Reducer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMarker overrides the text that reveals the panel from unknown deltas
func WithMarker(marker string) Option {
	return func(r *Reducer) {
		r.marker = marker
	}
}

// Reducer folds the unseen tail of a conversation's delta sequence into a
// Store. The cursor is the index of the last consumed event; it restarts at
// -1 whenever a different conversation is bound.
type Reducer struct {
	store  *Store
	log    *zap.Logger
	marker string

	// applyMu keeps folds in sequence order; mu guards the binding
	applyMu sync.Mutex
	mu      sync.Mutex
	boundID string
	cursor  int

	rebind chan struct{}
}

// NewReducer creates a reducer writing into store
func NewReducer(store *Store, opts ...Option) *Reducer {
	r := &Reducer{
		store:  store,
		log:    zap.NewNop(),
		marker: DashboardMarker,
		cursor: -1,
		rebind: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bind sets the conversation whose deltas are applied. Binding a different
// id restarts the cursor; rebinding the same id keeps it.
func (r *Reducer) Bind(conversationID string) {
	r.mu.Lock()
	if r.boundID == conversationID {
		r.mu.Unlock()
		return
	}
	r.boundID = conversationID
	r.cursor = -1
	r.mu.Unlock()

	select {
	case r.rebind <- struct{}{}:
	default:
	}
}

// BoundID returns the bound conversation id
func (r *Reducer) BoundID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boundID
}

// Cursor returns the index of the last consumed event, or -1
func (r *Reducer) Cursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Apply folds events[cursor+1:] into the store when conversationID is bound
// and returns how many events were folded. Sequences no longer than what was
// already consumed are ignored. Store subscribers may call Cursor or Bind;
// binding another conversation stops the remaining folds.
func (r *Reducer) Apply(conversationID string, events []Event) int {
	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	r.mu.Lock()
	if conversationID != r.boundID {
		r.mu.Unlock()
		return 0
	}
	last := len(events) - 1
	if last <= r.cursor {
		r.mu.Unlock()
		return 0
	}
	first := r.cursor + 1
	fresh := events[first:]
	r.cursor = last
	r.mu.Unlock()

	applied := 0
	for i, event := range fresh {
		if r.BoundID() != conversationID {
			break
		}
		index := first + i
		r.store.Update(func(s State) State {
			next, err := fold(s, event, r.marker)
			if err != nil {
				r.log.Warn("panel_event_dropped",
					zap.String("conversation", conversationID),
					zap.Int("index", index),
					zap.String("type", string(event.Type)),
					zap.Error(err))
			}
			return next
		})
		applied++
	}
	return applied
}

// Run applies the bound conversation's deltas every time the feed grows or
// the binding changes, until ctx is done.
func (r *Reducer) Run(ctx context.Context, feed Feed) error {
	changes, cancel := feed.Subscribe()
	defer cancel()

	for {
		id := r.BoundID()
		if id != "" {
			r.Apply(id, feed.Events(id))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
		case <-r.rebind:
		}
	}
}
