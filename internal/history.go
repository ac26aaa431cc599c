package internal

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HistoryState is an immutable view of the session store.
// Revision increases with every applied change.
type HistoryState struct {
	Sessions  []Session
	CurrentID string
	Loaded    bool
	Revision  uint64
}

// Current returns the selected session, if it exists
func (s HistoryState) Current() (Session, bool) {
	if s.CurrentID == "" {
		return Session{}, false
	}
	return s.Find(s.CurrentID)
}

// Find returns the session with the given id
func (s HistoryState) Find(id string) (Session, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Sessions[i], true
	}
	return Session{}, false
}

func (s HistoryState) indexOf(id string) int {
	for i, session := range s.Sessions {
		if session.ID == id {
			return i
		}
	}
	return -1
}

// HistoryStore owns the list of chat sessions and the active selection.
// All mutations are applied one at a time under a mutex; once loaded, every
// change is handed to a background persister.
type HistoryStore struct {
	codec     *SnapshotCodec
	persister *Persister
	config    *historyConfig

	mu    sync.Mutex
	state HistoryState

	subMu       sync.RWMutex
	subscribers map[int]func(HistoryState)
	nextSub     int
}

// NewHistoryStore creates a store persisting through codec. Call Load before use.
func NewHistoryStore(codec *SnapshotCodec, opts ...HistoryOption) *HistoryStore {
	config := defaultHistoryConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &HistoryStore{
		codec:       codec,
		persister:   NewPersister(codec),
		config:      config,
		state:       HistoryState{Sessions: []Session{}},
		subscribers: make(map[int]func(HistoryState)),
	}
}

// Load reads the persisted snapshot and marks the store loaded. A missing or
// invalid snapshot loads as empty. Loading twice is a no-op.
func (h *HistoryStore) Load(ctx context.Context) {
	if h.Loaded() {
		return
	}

	snapshot := h.codec.Read(ctx)
	sessions := make([]Session, 0, len(snapshot.Sessions))
	for _, stored := range snapshot.Sessions {
		sessions = append(sessions, DeserializeSession(stored))
	}
	sessions = NewDeduplicator().Deduplicate(sessions)
	currentID := snapshot.CurrentID()

	h.apply(func(prev HistoryState) (HistoryState, bool) {
		if prev.Loaded {
			return prev, false
		}
		return HistoryState{Sessions: sessions, CurrentID: currentID, Loaded: true}, true
	})

	logger.Debug("history_loaded",
		zap.Int("sessions", len(sessions)),
		zap.String("current", currentID))
}

// CreateSession adds a session and, unless opts.Background is set, selects it.
// An existing session with the same id is replaced. Returns false before Load.
func (h *HistoryStore) CreateSession(opts CreateOptions) (string, bool) {
	id := opts.ID
	if id == "" {
		id = h.config.newID()
	}
	title := opts.Title
	if title == "" {
		title = DefaultSessionTitle
	}
	now := h.config.now()

	created := h.apply(func(prev HistoryState) (HistoryState, bool) {
		if !prev.Loaded {
			return prev, false
		}

		session := Session{
			ID:         id,
			Title:      title,
			CreatedAt:  now,
			UpdatedAt:  now,
			Messages:   normalizeMessages(opts.InitialMessages, now),
			ModelID:    opts.ModelID,
			DraftInput: opts.DraftInput,
		}

		next := make([]Session, 0, len(prev.Sessions)+1)
		next = append(next, session)
		for _, s := range prev.Sessions {
			if s.ID != id {
				next = append(next, s)
			}
		}
		sortSessions(next)

		currentID := id
		if opts.Background {
			currentID = prev.CurrentID
		}
		return HistoryState{Sessions: next, CurrentID: currentID, Loaded: true}, true
	})

	if !created {
		return "", false
	}
	return id, true
}

// SelectSession makes id the active session. Unknown ids are ignored.
func (h *HistoryStore) SelectSession(id string) {
	h.apply(func(prev HistoryState) (HistoryState, bool) {
		if !prev.Loaded || prev.CurrentID == id || prev.indexOf(id) < 0 {
			return prev, false
		}
		prev.CurrentID = id
		return prev, true
	})
}

// DeleteSession removes a session. Deleting the active session selects the
// first remaining one, or none.
func (h *HistoryStore) DeleteSession(id string) {
	h.apply(func(prev HistoryState) (HistoryState, bool) {
		if !prev.Loaded {
			return prev, false
		}
		idx := prev.indexOf(id)
		if idx < 0 {
			return prev, false
		}

		next := make([]Session, 0, len(prev.Sessions)-1)
		next = append(next, prev.Sessions[:idx]...)
		next = append(next, prev.Sessions[idx+1:]...)

		currentID := prev.CurrentID
		if currentID == id {
			currentID = ""
			if len(next) > 0 {
				currentID = next[0].ID
			}
		}
		return HistoryState{Sessions: next, CurrentID: currentID, Loaded: true}, true
	})
}

// UpdateMessages replaces a session's messages, bumps UpdatedAt and re-sorts.
// The draft is kept unless WithDraftInput is given. Unknown ids are ignored.
func (h *HistoryStore) UpdateMessages(id string, messages []Message, opts ...UpdateOption) {
	config := &updateConfig{}
	for _, opt := range opts {
		opt(config)
	}
	updatedAt := config.updatedAt
	if updatedAt.IsZero() {
		updatedAt = h.config.now()
	}

	h.apply(func(prev HistoryState) (HistoryState, bool) {
		if !prev.Loaded {
			return prev, false
		}
		idx := prev.indexOf(id)
		if idx < 0 {
			return prev, false
		}

		next := cloneSessions(prev.Sessions)
		session := next[idx]
		session.UpdatedAt = updatedAt
		session.Messages = normalizeMessages(messages, updatedAt)
		if config.draftInput != nil {
			session.DraftInput = *config.draftInput
		}
		next[idx] = session
		sortSessions(next)

		prev.Sessions = next
		return prev, true
	})
}

// UpdateTitle renames a session in place. Unknown ids are ignored.
func (h *HistoryStore) UpdateTitle(id, title string) {
	h.updateInPlace(id, func(s *Session) { s.Title = title })
}

// UpdateModelID sets a session's model in place. Unknown ids are ignored.
func (h *HistoryStore) UpdateModelID(id, modelID string) {
	h.updateInPlace(id, func(s *Session) { s.ModelID = modelID })
}

// UpdateDraftInput sets a session's draft in place. Unknown ids are ignored.
func (h *HistoryStore) UpdateDraftInput(id, draft string) {
	h.updateInPlace(id, func(s *Session) { s.DraftInput = draft })
}

// ClearAll removes every session and the selection
func (h *HistoryStore) ClearAll() {
	h.apply(func(prev HistoryState) (HistoryState, bool) {
		if !prev.Loaded {
			return prev, false
		}
		return HistoryState{Sessions: []Session{}, Loaded: true}, true
	})
}

// State returns the current state
func (h *HistoryStore) State() HistoryState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Sessions returns the sessions ordered most recently updated first
func (h *HistoryStore) Sessions() []Session {
	state := h.State()
	out := make([]Session, len(state.Sessions))
	copy(out, state.Sessions)
	return out
}

// CurrentID returns the active session id, or "" if none
func (h *HistoryStore) CurrentID() string {
	return h.State().CurrentID
}

// CurrentSession returns the active session
func (h *HistoryStore) CurrentSession() (Session, bool) {
	return h.State().Current()
}

// Session returns the session with the given id
func (h *HistoryStore) Session(id string) (Session, bool) {
	return h.State().Find(id)
}

// Loaded reports whether Load has completed
func (h *HistoryStore) Loaded() bool {
	return h.State().Loaded
}

// Search returns sessions whose title contains query, case-insensitively.
// An empty query returns every session.
func (h *HistoryStore) Search(query string) []Session {
	sessions := h.Sessions()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return sessions
	}

	matches := make([]Session, 0, len(sessions))
	for _, session := range sessions {
		if strings.Contains(strings.ToLower(session.Title), query) {
			matches = append(matches, session)
		}
	}
	return matches
}

// Subscribe registers fn to receive every new state. Callbacks run on the
// mutating goroutine after the lock is released; use Revision to discard
// stale deliveries.
func (h *HistoryStore) Subscribe(fn func(HistoryState)) (cancel func()) {
	h.subMu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subscribers[id] = fn
	h.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.subMu.Lock()
			delete(h.subscribers, id)
			h.subMu.Unlock()
		})
	}
}

// Flush waits until the latest state has been written to storage
func (h *HistoryStore) Flush(ctx context.Context) error {
	return h.persister.Flush(ctx)
}

// Close flushes pending writes and stops the persister
func (h *HistoryStore) Close() error {
	h.persister.Close()
	return nil
}

// apply runs fn atomically. When fn reports a change the new state is
// published, and persisted if the store is loaded.
func (h *HistoryStore) apply(fn func(HistoryState) (HistoryState, bool)) bool {
	h.mu.Lock()
	next, changed := fn(h.state)
	if !changed {
		h.mu.Unlock()
		return false
	}
	next.Revision = h.state.Revision + 1
	h.state = next
	if next.Loaded {
		h.persister.Submit(snapshotOf(next))
	}
	h.mu.Unlock()

	h.publish(next)
	return true
}

func (h *HistoryStore) updateInPlace(id string, mutate func(*Session)) {
	h.apply(func(prev HistoryState) (HistoryState, bool) {
		if !prev.Loaded {
			return prev, false
		}
		idx := prev.indexOf(id)
		if idx < 0 {
			return prev, false
		}

		next := cloneSessions(prev.Sessions)
		mutate(&next[idx])
		prev.Sessions = next
		return prev, true
	})
}

func (h *HistoryStore) publish(state HistoryState) {
	h.subMu.RLock()
	subs := make([]func(HistoryState), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		subs = append(subs, fn)
	}
	h.subMu.RUnlock()

	for _, fn := range subs {
		fn(state)
	}
}

// snapshotOf builds the persisted form of state. Sessions without messages
// stay in memory only.
func snapshotOf(state HistoryState) Snapshot {
	snapshot := EmptySnapshot()
	if state.CurrentID != "" {
		currentID := state.CurrentID
		snapshot.CurrentChatID = &currentID
	}
	for _, session := range state.Sessions {
		if session.HasMessages() {
			snapshot.Sessions = append(snapshot.Sessions, SerializeSession(session))
		}
	}
	return snapshot
}

func normalizeMessages(messages []Message, now time.Time) []Message {
	out := make([]Message, len(messages))
	for i, msg := range messages {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = now
		}
		out[i] = msg
	}
	return out
}

func cloneSessions(sessions []Session) []Session {
	out := make([]Session, len(sessions))
	copy(out, sessions)
	return out
}

// sortSessions orders by UpdatedAt descending; ties keep their relative order
func sortSessions(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}
