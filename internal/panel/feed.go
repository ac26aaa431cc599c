package panel

import (
	"encoding/json"
	"sync"
)

// Feed is an append-only source of per-conversation delta sequences
type Feed interface {
	// Events returns the full sequence received so far for a conversation
	Events(conversationID string) []Event
	// Subscribe returns a channel signalled after every append
	Subscribe() (<-chan struct{}, func())
}

// Log is an in-memory Feed. Sequences only grow.
type Log struct {
	mu     sync.RWMutex
	events map[string][]Event

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// NewLog creates an empty delta log
func NewLog() *Log {
	return &Log{
		events: make(map[string][]Event),
		subs:   make(map[int]chan struct{}),
	}
}

// Append adds events to a conversation's sequence
func (l *Log) Append(conversationID string, events ...Event) {
	if len(events) == 0 {
		return
	}
	l.mu.Lock()
	l.events[conversationID] = append(l.events[conversationID], events...)
	l.mu.Unlock()

	l.notify()
}

// AppendRaw decodes and appends raw stream entries
func (l *Log) AppendRaw(conversationID string, raw ...json.RawMessage) {
	events := make([]Event, 0, len(raw))
	for _, entry := range raw {
		events = append(events, DecodeEvent(entry))
	}
	l.Append(conversationID, events...)
}

// Events implements Feed.
func (l *Log) Events(conversationID string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seq := l.events[conversationID]
	out := make([]Event, len(seq))
	copy(out, seq)
	return out
}

// Len returns the length of a conversation's sequence
func (l *Log) Len(conversationID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events[conversationID])
}

// Subscribe implements Feed. Signals coalesce: a slow reader sees one
// pending signal however many appends happened.
func (l *Log) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	l.subMu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.subMu.Lock()
			delete(l.subs, id)
			l.subMu.Unlock()
		})
	}
}

func (l *Log) notify() {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	for _, ch := range l.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
