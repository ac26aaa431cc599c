package panel

import "sync"

// Store holds one panel State. Each owner creates its own Store.
type Store struct {
	mu       sync.RWMutex
	state    State
	revision uint64

	subMu       sync.RWMutex
	subscribers []subscriber
	nextSub     int
}

// subscriber receives each published state with the revision it was
// committed at. Deliveries from concurrent updates may arrive out of order.
type subscriber struct {
	id int
	fn func(State, uint64)
}

// NewStore creates a store holding Initial()
func NewStore() *Store {
	return &Store{state: Initial()}
}

// State returns the current panel state
func (s *Store) State() State {
	state, _ := s.snapshot()
	return state
}

// Revision counts committed updates
func (s *Store) Revision() uint64 {
	_, rev := s.snapshot()
	return rev
}

func (s *Store) snapshot() (State, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.revision
}

// Update applies fn atomically and returns the new state
func (s *Store) Update(fn func(State) State) State {
	s.mu.Lock()
	next := fn(s.state)
	s.state = next
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	s.publish(next, rev)
	return next
}

// Set replaces the state
func (s *Store) Set(state State) {
	s.Update(func(State) State { return state })
}

// Reset restores Initial()
func (s *Store) Reset() {
	s.Set(Initial())
}

// Dismiss is the panel close action: a streaming panel is only hidden,
// an idle one is reset.
func (s *Store) Dismiss() {
	s.Update(func(current State) State {
		if current.Status == StatusStreaming {
			current.Visible = false
			return current
		}
		next := Initial()
		next.Status = StatusIdle
		return next
	})
}

// Hide hides the panel and keeps its content
func (s *Store) Hide() {
	s.Update(func(current State) State {
		current.Visible = false
		return current
	})
}

// EnterWorkflow switches the panel to a workflow view for a shift
func (s *Store) EnterWorkflow(mode WorkflowMode, shiftID string) {
	s.Update(func(current State) State {
		current.WorkflowMode = mode
		current.ActiveShiftID = shiftID
		return current
	})
}

// Subscribe registers fn to receive every new state. Subscribers are called
// in registration order on the updating goroutine.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	return s.subscribe(func(state State, _ uint64) { fn(state) })
}

func (s *Store) subscribe(fn func(State, uint64)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) publish(state State, rev uint64) {
	s.subMu.RLock()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.fn(state, rev)
	}
}

// Select projects the current state through selector
func Select[T any](s *Store, selector func(State) T) T {
	return selector(s.State())
}

// Watch calls fn whenever the projected value changes. fn is not called for
// the value current at registration. States older than one already seen are
// dropped, so the last value passed to fn is always the latest projection.
// Calls to fn are serialized; fn must not update s synchronously.
func Watch[T comparable](s *Store, selector func(State) T, fn func(T)) (cancel func()) {
	var mu sync.Mutex
	state, seen := s.snapshot()
	last := selector(state)

	return s.subscribe(func(state State, rev uint64) {
		mu.Lock()
		defer mu.Unlock()

		if rev <= seen {
			return
		}
		seen = rev

		value := selector(state)
		if value == last {
			return
		}
		last = value
		fn(value)
	})
}
