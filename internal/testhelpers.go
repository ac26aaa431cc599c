package internal

import (
	"fmt"
	"time"
)

// testEpoch is a fixed instant so fixtures sort deterministically
var testEpoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// CreateTestSession creates a test session with sample data
func CreateTestSession(id string) *Session {
	return &Session{
		ID:        id,
		Title:     "Test Conversation",
		CreatedAt: testEpoch,
		UpdatedAt: testEpoch,
		ModelID:   "test-model",
		Messages: []Message{
			{
				ID:        id + "-m1",
				Role:      RoleUser,
				Parts:     []Part{TextPart("Hello, how are you?")},
				CreatedAt: testEpoch,
			},
			{
				ID:        id + "-m2",
				Role:      RoleAssistant,
				Parts:     []Part{TextPart("I'm doing well, thank you!")},
				CreatedAt: testEpoch.Add(time.Second),
			},
		},
	}
}

// CreateTestSessionWithMessages creates a test session with custom messages
func CreateTestSessionWithMessages(id string, messages []Message) *Session {
	return &Session{
		ID:        id,
		Title:     "Test Conversation",
		CreatedAt: testEpoch,
		UpdatedAt: testEpoch,
		Messages:  messages,
	}
}

// CreateTestMessages creates n alternating user/assistant text messages
func CreateTestMessages(prefix string, n int) []Message {
	messages := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		msg := NewTextMessage(fmt.Sprintf("%s-%d", prefix, i), role, fmt.Sprintf("message %d", i))
		msg.CreatedAt = testEpoch.Add(time.Duration(i) * time.Second)
		messages = append(messages, msg)
	}
	return messages
}

// CreateTestStoredSession creates a persisted session with one message
func CreateTestStoredSession(id, title string, updatedAt time.Time) StoredSession {
	session := Session{
		ID:        id,
		Title:     title,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
		Messages:  CreateTestMessages(id, 1),
	}
	return SerializeSession(session)
}
