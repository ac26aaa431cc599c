package panel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitial(t *testing.T) {
	s := Initial()
	assert.Equal(t, InitialID, s.ID)
	assert.True(t, s.Visible)
	assert.Equal(t, StatusIdle, s.Status)
	assert.NotNil(t, s.Items)
	assert.Empty(t, s.Items)
	assert.Equal(t, WorkflowDefault, s.WorkflowMode)
	assert.Empty(t, s.ActiveShiftID)
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusIdle.Valid())
	assert.True(t, StatusStreaming.Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("done").Valid())
}

func TestStore_Update(t *testing.T) {
	store := NewStore()
	got := store.Update(func(s State) State {
		s.Title = "Coverage"
		return s
	})
	assert.Equal(t, "Coverage", got.Title)
	assert.Equal(t, got, store.State())

	store.Set(State{ID: "custom"})
	assert.Equal(t, "custom", store.State().ID)

	store.Reset()
	assert.Equal(t, Initial(), store.State())
}

func TestStore_Dismiss(t *testing.T) {
	t.Run("streaming panel is hidden", func(t *testing.T) {
		store := NewStore()
		store.Update(func(s State) State {
			s.Status = StatusStreaming
			s.Title = "in progress"
			return s
		})

		store.Dismiss()
		state := store.State()
		assert.False(t, state.Visible)
		assert.Equal(t, StatusStreaming, state.Status)
		assert.Equal(t, "in progress", state.Title)
	})

	t.Run("idle panel is reset", func(t *testing.T) {
		store := NewStore()
		store.Update(func(s State) State {
			s.Title = "done"
			s.Items = []Item{{ID: "1"}}
			return s
		})

		store.Dismiss()
		assert.Equal(t, Initial(), store.State())
	})
}

func TestStore_HideAndEnterWorkflow(t *testing.T) {
	store := NewStore()
	store.Update(func(s State) State {
		s.Title = "kept"
		return s
	})

	store.Hide()
	assert.False(t, store.State().Visible)
	assert.Equal(t, "kept", store.State().Title)

	store.EnterWorkflow(WorkflowCoverage, "shift-1")
	assert.Equal(t, WorkflowCoverage, store.State().WorkflowMode)
	assert.Equal(t, "shift-1", store.State().ActiveShiftID)
	assert.Equal(t, "kept", store.State().Title)
}

func TestStore_Subscribe(t *testing.T) {
	store := NewStore()

	var got []string
	cancel := store.Subscribe(func(s State) {
		got = append(got, s.Title)
	})

	store.Update(func(s State) State { s.Title = "a"; return s })
	store.Update(func(s State) State { s.Title = "b"; return s })
	cancel()
	cancel()
	store.Update(func(s State) State { s.Title = "c"; return s })

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestSelect(t *testing.T) {
	store := NewStore()
	store.EnterWorkflow(WorkflowShiftSchedule, "task-3")

	assert.Equal(t, WorkflowShiftSchedule, Select(store, func(s State) WorkflowMode { return s.WorkflowMode }))
	assert.Equal(t, 0, Select(store, func(s State) int { return len(s.Items) }))
}

func TestWatch(t *testing.T) {
	store := NewStore()

	var statuses []Status
	cancel := Watch(store, func(s State) Status { return s.Status }, func(s Status) {
		statuses = append(statuses, s)
	})
	defer cancel()

	store.Update(func(s State) State { s.Title = "no status change"; return s })
	store.Update(func(s State) State { s.Status = StatusStreaming; return s })
	store.Update(func(s State) State { s.Summary = "still streaming"; return s })
	store.Update(func(s State) State { s.Status = StatusIdle; return s })

	assert.Equal(t, []Status{StatusStreaming, StatusIdle}, statuses)
}

func TestWatch_DropsOlderStates(t *testing.T) {
	store := NewStore()
	store.Hide()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	// Registered first, so it stalls the shown state's delivery before Watch sees it
	store.Subscribe(func(s State) {
		if s.Visible {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
	})

	var mu sync.Mutex
	var deliveries []bool
	cancel := Watch(store, func(s State) bool { return s.Visible }, func(visible bool) {
		mu.Lock()
		deliveries = append(deliveries, visible)
		mu.Unlock()
	})
	defer cancel()

	shown := make(chan struct{})
	go func() {
		defer close(shown)
		store.Update(func(s State) State { s.Visible = true; return s })
	}()

	<-entered
	store.Hide()
	close(release)
	<-shown

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, store.State().Visible)
	assert.Empty(t, deliveries, "stale shown state must not be delivered after the hide")
	assert.Equal(t, uint64(3), store.Revision())
}

func TestStore_SubscribeOrder(t *testing.T) {
	store := NewStore()

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		store.Subscribe(func(State) { order = append(order, name) })
	}
	cancelFourth := store.Subscribe(func(State) { order = append(order, "fourth") })
	cancelFourth()

	store.Reset()
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update(func(s State) State {
				items := make([]Item, len(s.Items), len(s.Items)+1)
				copy(items, s.Items)
				s.Items = append(items, Item{ID: "x"})
				return s
			})
		}()
	}
	wg.Wait()

	require.Len(t, store.State().Items, 50)
}
