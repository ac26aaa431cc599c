package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/chatstate/internal"
)

func TestJSONExporter_Export(t *testing.T) {
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
			name: "session with all fields",
			session: &internal.Session{
				ID:         "test3",
				Title:      "Quarterly plan",
				CreatedAt:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				UpdatedAt:  time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
				ModelID:    "model-a",
				DraftInput: "half typed",
				Messages: []internal.Message{
					internal.NewTextMessage("m1", internal.RoleUser, "Hello"),
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			err := exporter.Export(tt.session, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("JSONExporter.Export() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				output := buf.String()
				// Verify it's valid JSON in the persisted layout
				var stored internal.StoredSession
				if err := json.Unmarshal([]byte(output), &stored); err != nil {
					t.Errorf("Output is not valid JSON: %v\nOutput: %s", err, output)
					return
				}

				if stored.ID != tt.session.ID {
					t.Errorf("stored.ID = %q, want %q", stored.ID, tt.session.ID)
				}
				if len(stored.Messages) != len(tt.session.Messages) {
					t.Errorf("len(stored.Messages) = %d, want %d", len(stored.Messages), len(tt.session.Messages))
				}

				// Verify it's pretty-printed (contains indentation)
				if !strings.Contains(output, "  ") {
					t.Errorf("Output should be pretty-printed with indentation")
				}
			}
		})
	}
}

func TestJSONExporter_DatesAreISO(t *testing.T) {
	var buf bytes.Buffer
	session := internal.CreateTestSession("iso")
	if err := (&JSONExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"createdAt": "2025-01-01T12:00:00.000Z"`) {
		t.Errorf("expected millisecond ISO timestamp, got:\n%s", buf.String())
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
