package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/chatstate/testutil"
)

func TestInspectCommand(t *testing.T) {
	dir := setupCLI(t)
	dbPath := filepath.Join(testutil.CreateTempDir(t), "chatstate.db")
	testutil.CreateSQLiteFixture(t, dbPath, "v0-chat-history", testutil.SampleSnapshot)
	testutil.CreateSQLiteFixture(t, dbPath, "notes", "plain text")

	out, err := runCLI(t, dir, "inspect", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "chatStateKV")
	assert.Contains(t, out, "v0-chat-history")
	assert.Contains(t, out, "snapshot, 2 session(s)")
	assert.Contains(t, out, "notes")
	assert.Contains(t, out, "not a snapshot")
}

func TestInspectCommand_JSON(t *testing.T) {
	dir := setupCLI(t)
	dbPath := filepath.Join(testutil.CreateTempDir(t), "chatstate.db")
	testutil.CreateSQLiteFixture(t, dbPath, "v0-chat-history", testutil.SampleSnapshot)
	testutil.CreateSQLiteFixture(t, dbPath, "other", `{"version":1}`)

	out, err := runCLI(t, dir, "inspect", dbPath, "--format", "json", "--pattern", "v0-%")
	require.NoError(t, err)

	var report databaseReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Keys, 1)
	assert.Equal(t, "v0-chat-history", report.Keys[0].Key)
	assert.True(t, report.Keys[0].Snapshot)
	assert.Equal(t, 2, report.Keys[0].Sessions)
}

func TestInspectCommand_RequiresSQLite(t *testing.T) {
	dir := setupCLI(t)

	_, err := runCLI(t, dir, "inspect")
	assert.Error(t, err)
}

func TestWatchCommand_UnsupportedBackend(t *testing.T) {
	setupCLI(t)
	resetFlags()

	_, err := runCLI(t, "", "--backend", "memory", "watch")
	assert.Error(t, err)
}
