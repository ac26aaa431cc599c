package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/chatstate/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	// Header
	title := session.Title
	if title == "" {
		title = fmt.Sprintf("Session %s", session.ID)
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(title))

	_, _ = fmt.Fprintf(w, "**ID:** %s  \n", session.ID)
	if session.ModelID != "" {
		_, _ = fmt.Fprintf(w, "**Model:** %s  \n", session.ModelID)
	}
	_, _ = fmt.Fprintf(w, "**Updated:** %s  \n", session.UpdatedAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	// Messages
	for i, msg := range session.Messages {
		timestamp := ""
		if !msg.CreatedAt.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.CreatedAt.UTC().Format(time.RFC3339))
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n", msg.Role, timestamp)

		for _, part := range msg.Parts {
			switch part.Type {
			case internal.PartText:
				_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(part.Text))
			case internal.PartReasoning:
				for _, line := range strings.Split(part.Reasoning, "\n") {
					_, _ = fmt.Fprintf(w, "> %s\n", line)
				}
				_, _ = fmt.Fprintf(w, "\n")
			case internal.PartToolInvocation:
				if part.ToolInvocation != nil {
					_, _ = fmt.Fprintf(w, "_Tool `%s` (%s)_\n\n", part.ToolInvocation.ToolName, part.ToolInvocation.State)
				}
			}
		}

		// Add horizontal rule after each message (except the last one)
		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			// Escape markdown syntax outside code blocks
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
