package internal

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	// MaxTitleLength is the longest title kept for a session
	MaxTitleLength = 30
	// titleStemLength is how much of a long title survives before the ellipsis
	titleStemLength = 27
	// NewChatTitle is the title given to sessions started from the new chat action
	NewChatTitle = "New chat"
)

// TitleGenerator produces a short title from the first user message
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, text string) (string, error)
}

// TitleGeneratorFunc adapts a function to TitleGenerator
type TitleGeneratorFunc func(ctx context.Context, text string) (string, error)

// GenerateTitle implements TitleGenerator.
func (f TitleGeneratorFunc) GenerateTitle(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// FallbackTitler derives a title from the message text itself
type FallbackTitler struct{}

// GenerateTitle implements TitleGenerator.
func (FallbackTitler) GenerateTitle(_ context.Context, text string) (string, error) {
	content := text
	if strings.TrimSpace(content) == "" {
		content = "New Chat"
	}

	runes := []rune(content)
	stem := runes
	if len(stem) > titleStemLength {
		stem = stem[:titleStemLength]
	}
	simple := strings.TrimSpace(string(stem))
	if len([]rune(simple)) < len(runes) {
		return simple + "...", nil
	}
	return simple, nil
}

// TruncateTitle shortens titles longer than MaxTitleLength
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > MaxTitleLength {
		return string(runes[:titleStemLength]) + "..."
	}
	return title
}

// IsPlaceholderTitle reports whether a session still carries a default title
func IsPlaceholderTitle(title string) bool {
	return title == "" || title == NewChatTitle || title == DefaultSessionTitle
}

// TitleCoordinator runs title generation at most once per active session.
// The guard is set before generation starts, cleared again if generation
// fails, and reset whenever a different session becomes active.
type TitleCoordinator struct {
	store     *HistoryStore
	generator TitleGenerator

	mu      sync.Mutex
	boundID string
	started bool

	wg     sync.WaitGroup
	cancel func()
}

// NewTitleCoordinator binds the guard to the store's active session
func NewTitleCoordinator(store *HistoryStore, generator TitleGenerator) *TitleCoordinator {
	if generator == nil {
		generator = FallbackTitler{}
	}
	t := &TitleCoordinator{
		store:     store,
		generator: generator,
		boundID:   store.CurrentID(),
	}
	t.cancel = store.Subscribe(func(state HistoryState) {
		t.rebind(state.CurrentID)
	})
	return t
}

func (t *TitleCoordinator) rebind(currentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.boundID != currentID {
		t.boundID = currentID
		t.started = false
	}
}

// Started reports whether generation has been launched for the active session
func (t *TitleCoordinator) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Generate launches title generation for sessionID from text unless it was
// already launched for the active session. The result lands through
// UpdateTitle, which ignores sessions deleted in the meantime.
func (t *TitleCoordinator) Generate(ctx context.Context, sessionID, text string) bool {
	t.mu.Lock()
	if t.boundID != sessionID {
		t.boundID = sessionID
		t.started = false
	}
	if t.started {
		t.mu.Unlock()
		return false
	}
	t.started = true
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		title, err := t.generator.GenerateTitle(ctx, text)
		if err != nil {
			logger.Warn("title_generation_failed", zap.String("session", sessionID), zap.Error(err))
			t.mu.Lock()
			// only the session that launched may clear its own guard
			if t.boundID == sessionID {
				t.started = false
			}
			t.mu.Unlock()
			return
		}

		t.store.UpdateTitle(sessionID, TruncateTitle(title))
		logger.Debug("title_generated", zap.String("session", sessionID), zap.String("title", title))
	}()
	return true
}

// Wait blocks until in-flight generations finish
func (t *TitleCoordinator) Wait() {
	t.wg.Wait()
}

// Close detaches from the store and waits for in-flight generations
func (t *TitleCoordinator) Close() {
	t.cancel()
	t.wg.Wait()
}
