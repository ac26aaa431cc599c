package internal

import (
	"encoding/json"
	"strings"
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType identifies the kind of content fragment in a message
type PartType string

const (
	PartText           PartType = "text"
	PartToolInvocation PartType = "tool-invocation"
	PartReasoning      PartType = "reasoning"
)

// Session represents one chat conversation with its messages and metadata.
// Sessions handed out by the HistoryStore are snapshots; treat them as read-only.
type Session struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Messages   []Message `json:"messages"`
	ModelID    string    `json:"modelId,omitempty"`
	DraftInput string    `json:"draftInput,omitempty"`
}

// Message represents a single turn in a session.
// A zero CreatedAt means the timestamp was never assigned.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Parts     []Part    `json:"parts"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Part is a typed content fragment of a message
type Part struct {
	Type           PartType        `json:"type"`
	Text           string          `json:"text,omitempty"`
	Reasoning      string          `json:"reasoning,omitempty"`
	ToolInvocation *ToolInvocation `json:"toolInvocation,omitempty"`
}

// ToolInvocation describes a tool call made while generating a response
type ToolInvocation struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	State      string          `json:"state"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// TextPart builds a text part
func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

// NewTextMessage builds a message with a single text part
func NewTextMessage(id string, role Role, text string) Message {
	return Message{ID: id, Role: role, Parts: []Part{TextPart(text)}}
}

// Text joins the text parts of the message
func (m Message) Text() string {
	var texts []string
	for _, part := range m.Parts {
		if part.Type == PartText && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// HasMessages reports whether the session would be persisted
func (s Session) HasMessages() bool {
	return len(s.Messages) > 0
}

// FirstUserText returns the text of the first user message, if any
func (s Session) FirstUserText() string {
	for _, msg := range s.Messages {
		if msg.Role == RoleUser {
			return msg.Text()
		}
	}
	return ""
}
