package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/chatstate/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		obj := map[string]interface{}{
			"id":      msg.ID,
			"role":    msg.Role,
			"content": msg.Text(),
		}

		if !msg.CreatedAt.IsZero() {
			obj["createdAt"] = msg.CreatedAt.UTC().Format(time.RFC3339Nano)
		}

		if tools := toolNames(msg); len(tools) > 0 {
			obj["tools"] = tools
		}

		// Encode to single line
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

func toolNames(msg internal.Message) []string {
	var names []string
	for _, part := range msg.Parts {
		if part.Type == internal.PartToolInvocation && part.ToolInvocation != nil {
			names = append(names, part.ToolInvocation.ToolName)
		}
	}
	return names
}
