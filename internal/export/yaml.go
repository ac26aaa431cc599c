package export

import (
	"io"
	"time"

	"github.com/iksnae/chatstate/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports sessions in YAML format
type YAMLExporter struct{}

type yamlSession struct {
	ID         string        `yaml:"id"`
	Title      string        `yaml:"title"`
	CreatedAt  time.Time     `yaml:"created_at"`
	UpdatedAt  time.Time     `yaml:"updated_at"`
	ModelID    string        `yaml:"model_id,omitempty"`
	DraftInput string        `yaml:"draft_input,omitempty"`
	Messages   []yamlMessage `yaml:"messages"`
}

type yamlMessage struct {
	ID        string    `yaml:"id"`
	Role      string    `yaml:"role"`
	Content   string    `yaml:"content"`
	Reasoning string    `yaml:"reasoning,omitempty"`
	Tools     []string  `yaml:"tools,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

// Export exports a session to YAML format
func (e *YAMLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	out := yamlSession{
		ID:         session.ID,
		Title:      session.Title,
		CreatedAt:  session.CreatedAt.UTC(),
		UpdatedAt:  session.UpdatedAt.UTC(),
		ModelID:    session.ModelID,
		DraftInput: session.DraftInput,
		Messages:   make([]yamlMessage, 0, len(session.Messages)),
	}
	for _, msg := range session.Messages {
		out.Messages = append(out.Messages, yamlMessage{
			ID:        msg.ID,
			Role:      string(msg.Role),
			Content:   msg.Text(),
			Reasoning: reasoningText(msg),
			Tools:     toolNames(msg),
			CreatedAt: msg.CreatedAt.UTC(),
		})
	}

	return enc.Encode(out)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

func reasoningText(msg internal.Message) string {
	for _, part := range msg.Parts {
		if part.Type == internal.PartReasoning && part.Reasoning != "" {
			return part.Reasoning
		}
	}
	return ""
}
