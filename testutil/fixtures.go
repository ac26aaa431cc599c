package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// SampleSnapshot is a valid version 1 snapshot with two sessions, the first
// one active
const SampleSnapshot = `{
  "version": 1,
  "currentChatId": "chat-1",
  "sessions": [
    {
      "id": "chat-1",
      "title": "Coverage planning",
      "createdAt": "2025-01-01T10:00:00.000Z",
      "updatedAt": "2025-01-01T12:00:00.000Z",
      "modelId": "test-model",
      "messages": [
        {"id": "m1", "role": "user", "parts": [{"type": "text", "text": "Who can cover Friday?"}], "createdAt": "2025-01-01T11:59:00.000Z"},
        {"id": "m2", "role": "assistant", "parts": [{"type": "text", "text": "Two nurses are available."}], "createdAt": "2025-01-01T12:00:00.000Z"}
      ]
    },
    {
      "id": "chat-2",
      "title": "Shift swap",
      "createdAt": "2024-12-31T09:00:00.000Z",
      "updatedAt": "2024-12-31T09:30:00.000Z",
      "messages": [
        {"id": "m3", "role": "user", "parts": [{"type": "text", "text": "Swap my Monday shift"}], "createdAt": "2024-12-31T09:30:00.000Z"}
      ]
    }
  ]
}`

// SnapshotFileName is the file a file slot uses for the default key
const SnapshotFileName = "v0-chat-history.json"

// CreateSnapshotFixture writes data where a file slot rooted at dir reads the
// default key
func CreateSnapshotFixture(t *testing.T, dir string, data string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	path := filepath.Join(dir, SnapshotFileName)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write snapshot fixture: %v", err)
	}
	return path
}

// CreateSQLiteFixture creates a SQLite database holding data under key
func CreateSQLiteFixture(t *testing.T, dbPath, key, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO chatStateKV (key, value) VALUES (?, ?)", key, data); err != nil {
		t.Fatalf("Failed to insert snapshot: %v", err)
	}
}

// CreateEventsFixture writes newline-delimited panel deltas and returns the path
func CreateEventsFixture(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "events.jsonl")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write events fixture: %v", err)
	}
	return path
}

// PanelDelta renders one stream entry
func PanelDelta(eventType, content string) string {
	return fmt.Sprintf(`{"type":%q,"content":%q}`, eventType, content)
}
