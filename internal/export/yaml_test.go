package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/chatstate/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		session *internal.Session
		wantErr bool
	}{
		{
			name:    "basic session",
			session: internal.CreateTestSession("test1"),
			wantErr: false,
		},
		{
			name:    "empty session",
			session: internal.CreateTestSessionWithMessages("test2", []internal.Message{}),
			wantErr: false,
		},
		{
			name: "session with reasoning",
			session: internal.CreateTestSessionWithMessages("test3", []internal.Message{
				{
					ID:   "m1",
					Role: internal.RoleAssistant,
					Parts: []internal.Part{
						{Type: internal.PartReasoning, Reasoning: "thinking it over"},
						internal.TextPart("Done"),
					},
				},
			}),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &YAMLExporter{}

			err := exporter.Export(tt.session, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("YAMLExporter.Export() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				output := buf.String()
				// Verify it's valid YAML
				var decoded map[string]interface{}
				if err := yaml.Unmarshal([]byte(output), &decoded); err != nil {
					t.Errorf("Output is not valid YAML: %v\nOutput: %s", err, output)
					return
				}

				if decoded["id"] != tt.session.ID {
					t.Errorf("decoded id = %v, want %q", decoded["id"], tt.session.ID)
				}

				messages, _ := decoded["messages"].([]interface{})
				if len(messages) != len(tt.session.Messages) {
					t.Errorf("decoded %d messages, want %d", len(messages), len(tt.session.Messages))
				}
			}
		})
	}
}

func TestYAMLExporter_Reasoning(t *testing.T) {
	var buf bytes.Buffer
	session := internal.CreateTestSessionWithMessages("r", []internal.Message{
		{
			ID:    "m1",
			Role:  internal.RoleAssistant,
			Parts: []internal.Part{{Type: internal.PartReasoning, Reasoning: "thinking it over"}},
		},
	})
	if err := (&YAMLExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), "reasoning: thinking it over") {
		t.Errorf("expected reasoning in output, got:\n%s", buf.String())
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	exporter := &YAMLExporter{}
	if got := exporter.Extension(); got != "yaml" {
		t.Errorf("YAMLExporter.Extension() = %v, want yaml", got)
	}
}
