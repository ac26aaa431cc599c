package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS chatStateKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`

// CreateInMemoryDB creates an in-memory SQLite database for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// Each connection to :memory: gets its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to create chatStateKV table: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// CreateTestDB creates a test database holding the sample snapshot under the
// default key plus one unrelated row
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	rows := []struct {
		key   string
		value string
	}{
		{key: "v0-chat-history", value: SampleSnapshot},
		{key: "v0-chat-history-backup", value: `{"version":1,"currentChatId":null,"sessions":[]}`},
		{key: "preferences", value: `{"theme":"dark"}`},
	}

	for _, row := range rows {
		if _, err := db.Exec("INSERT INTO chatStateKV (key, value) VALUES (?, ?)", row.key, row.value); err != nil {
			t.Fatalf("Failed to insert %s: %v", row.key, err)
		}
	}

	return db
}
