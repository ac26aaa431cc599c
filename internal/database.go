package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const createKVTable = `CREATE TABLE IF NOT EXISTS chatStateKV (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// OpenDatabase opens (or creates) a SQLite database holding the chatStateKV table
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.Exec(createKVTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create chatStateKV table: %w", err)
	}

	return db, nil
}

// QueryChatStateKV queries the chatStateKV table with a LIKE pattern
func QueryChatStateKV(db *sql.DB, pattern string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM chatStateKV WHERE key LIKE ? AND value IS NOT NULL"
	rows, err := db.Query(query, pattern)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// KeyValuePair represents a key-value pair from chatStateKV
type KeyValuePair struct {
	Key   string
	Value string
}

// SQLiteSlot stores payloads as rows of the chatStateKV table
type SQLiteSlot struct {
	db *sql.DB
}

// NewSQLiteSlot opens the database at path and wraps it as a slot
func NewSQLiteSlot(path string) (*SQLiteSlot, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StorageError{Key: path, Op: "open", Err: err}
	}
	return &SQLiteSlot{db: db}, nil
}

// NewSQLiteSlotFromDB wraps an already opened database. The table is created if missing.
func NewSQLiteSlotFromDB(db *sql.DB) (*SQLiteSlot, error) {
	if _, err := db.Exec(createKVTable); err != nil {
		return nil, &StorageError{Key: "chatStateKV", Op: "open", Err: err}
	}
	return &SQLiteSlot{db: db}, nil
}

// DB exposes the underlying handle for key listings
func (s *SQLiteSlot) DB() *sql.DB {
	return s.db
}

// Get implements Slot.
func (s *SQLiteSlot) Get(ctx context.Context, key string) ([]byte, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM chatStateKV WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !value.Valid) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, &StorageError{Key: key, Op: "get", Err: err}
	}
	return []byte(value.String), nil
}

// Set implements Slot.
func (s *SQLiteSlot) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO chatStateKV (key, value) VALUES (?, ?)", key, string(value))
	if err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements Slot.
func (s *SQLiteSlot) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chatStateKV WHERE key = ?", key); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close implements Slot.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}
