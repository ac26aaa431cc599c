package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iksnae/chatstate/internal/panel"
)

// Responder produces the assistant reply for a conversation
type Responder interface {
	Respond(ctx context.Context, history []Message) (Message, error)
}

// ResponderFunc adapts a function to Responder
type ResponderFunc func(ctx context.Context, history []Message) (Message, error)

// Respond implements Responder.
func (f ResponderFunc) Respond(ctx context.Context, history []Message) (Message, error) {
	return f(ctx, history)
}

// toolStartShiftCoverage results switch the panel into the coverage workspace
const toolStartShiftCoverage = "startShiftCoverageWorkflow"

// Chat drives one conversation view: it sends user input, records replies,
// and keeps the panel and session titles in step with the active session.
type Chat struct {
	history   *HistoryStore
	panel     *panel.Store
	titles    *TitleCoordinator
	responder Responder
	modelID   string
	now       func() time.Time
}

// NewChatController creates a conversation controller. modelID is used for sessions
// that have none.
func NewChatController(history *HistoryStore, panelStore *panel.Store, titles *TitleCoordinator, responder Responder, modelID string) *Chat {
	return &Chat{
		history:   history,
		panel:     panelStore,
		titles:    titles,
		responder: responder,
		modelID:   modelID,
		now:       time.Now,
	}
}

// NewChat resets the panel and starts a fresh session inheriting the active
// session's model. Returns false before the store is loaded.
func (c *Chat) NewChat(modelID string) (string, bool) {
	c.panel.Reset()

	if modelID == "" {
		if current, ok := c.history.CurrentSession(); ok {
			modelID = current.ModelID
		}
	}
	if modelID == "" {
		modelID = c.modelID
	}

	return c.history.CreateSession(CreateOptions{
		Title:   NewChatTitle,
		ModelID: modelID,
	})
}

// Submit sends text as the next user message of the active session. The draft
// is cleared before the responder runs and restored if it fails.
func (c *Chat) Submit(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	session, ok := c.history.CurrentSession()
	if !ok {
		id, created := c.NewChat("")
		if !created {
			return fmt.Errorf("history not loaded: %w", ErrStoreClosed)
		}
		session, _ = c.history.Session(id)
	}
	id := session.ID

	if session.ModelID == "" && c.modelID != "" {
		c.history.UpdateModelID(id, c.modelID)
	}

	if !session.HasMessages() && IsPlaceholderTitle(session.Title) && c.titles != nil {
		c.titles.Generate(ctx, id, trimmed)
	}

	c.history.UpdateDraftInput(id, "")

	userMsg := NewTextMessage(uuid.NewString(), RoleUser, trimmed)
	userMsg.CreatedAt = c.now()
	conversation := append(append([]Message{}, session.Messages...), userMsg)
	c.history.UpdateMessages(id, conversation)

	if err := c.respond(ctx, id, conversation); err != nil {
		logger.Warn("send_failed", zap.String("session", id), zap.Error(err))
		c.history.UpdateDraftInput(id, text)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Regenerate retries the last turn of the active session. A trailing assistant
// reply is replaced by a fresh one; a trailing user message is sent again.
// On failure the previous messages are kept.
func (c *Chat) Regenerate(ctx context.Context) error {
	session, ok := c.history.CurrentSession()
	if !ok || !session.HasMessages() {
		return nil
	}
	last := session.Messages[len(session.Messages)-1]

	if last.Role != RoleAssistant {
		text := strings.TrimSpace(last.Text())
		if text == "" {
			return nil
		}
		return c.Submit(ctx, text)
	}

	id := session.ID
	conversation := append([]Message{}, session.Messages[:len(session.Messages)-1]...)
	c.history.UpdateMessages(id, conversation)

	if err := c.respond(ctx, id, conversation); err != nil {
		logger.Warn("regenerate_failed", zap.String("session", id), zap.Error(err))
		c.history.UpdateMessages(id, session.Messages)
		return fmt.Errorf("failed to regenerate message: %w", err)
	}
	return nil
}

// respond asks the responder for the reply to conversation and records it
func (c *Chat) respond(ctx context.Context, id string, conversation []Message) error {
	reply, err := c.responder.Respond(ctx, conversation)
	if err != nil {
		return err
	}

	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	if reply.Role == "" {
		reply.Role = RoleAssistant
	}
	c.history.UpdateMessages(id, append(conversation, reply))
	c.ApplyToolResults(reply)
	return nil
}

// ApplyToolResults switches the panel workflow for tool results carried by msg
func (c *Chat) ApplyToolResults(msg Message) {
	for _, part := range msg.Parts {
		if part.Type != PartToolInvocation || part.ToolInvocation == nil {
			continue
		}
		inv := part.ToolInvocation
		if inv.State != "result" || len(inv.Result) == 0 {
			continue
		}

		switch inv.ToolName {
		case toolStartShiftCoverage:
			var result struct {
				Type    string `json:"type"`
				ShiftID string `json:"shiftId"`
			}
			if err := json.Unmarshal(inv.Result, &result); err != nil {
				continue
			}
			if result.Type == "workflow_started" {
				c.panel.EnterWorkflow(panel.WorkflowCoverage, result.ShiftID)
			}
		}
	}
}

// AcceptShiftTask opens the shift schedule for a task the user agreed to cover
func (c *Chat) AcceptShiftTask(taskID string) {
	c.panel.EnterWorkflow(panel.WorkflowShiftSchedule, taskID)
}
