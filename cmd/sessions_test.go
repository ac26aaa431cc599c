package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/chatstate/testutil"
)

func TestSendCommand_CreatesAndTitlesSession(t *testing.T) {
	dir := setupCLI(t)

	out, err := runCLI(t, dir, "send", "Plan", "the", "Friday", "rota", "--reply", "On it")
	require.NoError(t, err)
	assert.Contains(t, out, "On it")

	snapshot := readSnapshot(t, dir)
	require.Len(t, snapshot.Sessions, 1)
	session := snapshot.Sessions[0]
	assert.Equal(t, session.ID, snapshot.CurrentID())
	assert.Equal(t, "Plan the Friday rota", session.Title)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, "user", string(session.Messages[0].Role))
	assert.Equal(t, "assistant", string(session.Messages[1].Role))
	assert.Empty(t, session.DraftInput)
}

func TestSendCommand_EchoesByDefault(t *testing.T) {
	dir := setupCLI(t)

	out, err := runCLI(t, dir, "send", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "ping")
}

func TestSendCommand_OfflineKeepsDraft(t *testing.T) {
	dir := setupCLI(t)

	_, err := runCLI(t, dir, "send", "--offline", "hello?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send message")

	snapshot := readSnapshot(t, dir)
	require.Len(t, snapshot.Sessions, 1)
	assert.Equal(t, "hello?", snapshot.Sessions[0].DraftInput)
	// the user message was recorded before the responder ran
	assert.Len(t, snapshot.Sessions[0].Messages, 1)
}

func TestSendCommand_Regenerate(t *testing.T) {
	dir := setupCLI(t)

	_, err := runCLI(t, dir, "send", "Plan Friday", "--reply", "first draft")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "send", "--regenerate", "--reply", "second draft")
	require.NoError(t, err)
	assert.Contains(t, out, "second draft")

	snapshot := readSnapshot(t, dir)
	require.Len(t, snapshot.Sessions, 1)
	messages := snapshot.Sessions[0].Messages
	require.Len(t, messages, 2)
	assert.Equal(t, "Plan Friday", messages[0].Parts[0].Text)
	assert.Equal(t, "second draft", messages[1].Parts[0].Text)

	_, err = runCLI(t, dir, "send", "--regenerate", "extra text")
	assert.Error(t, err)
}

func TestSendCommand_RegenerateAfterFailure(t *testing.T) {
	dir := setupCLI(t)

	_, err := runCLI(t, dir, "send", "--offline", "hello?")
	require.Error(t, err)

	_, err = runCLI(t, dir, "send", "--regenerate", "--reply", "Hi")
	require.NoError(t, err)

	snapshot := readSnapshot(t, dir)
	messages := snapshot.Sessions[0].Messages
	require.Len(t, messages, 3)
	assert.Equal(t, "hello?", messages[1].Parts[0].Text)
	assert.Equal(t, "Hi", messages[2].Parts[0].Text)
	assert.Empty(t, snapshot.Sessions[0].DraftInput)
}

func TestSendCommand_ContinuesActiveSession(t *testing.T) {
	dir := setupCLI(t)
	testutil.CreateSnapshotFixture(t, dir, testutil.SampleSnapshot)

	_, err := runCLI(t, dir, "send", "And Saturday?", "--reply", "One nurse")
	require.NoError(t, err)

	snapshot := readSnapshot(t, dir)
	require.Len(t, snapshot.Sessions, 2)
	assert.Equal(t, "chat-1", snapshot.Sessions[0].ID)
	assert.Equal(t, "Coverage planning", snapshot.Sessions[0].Title)
	assert.Len(t, snapshot.Sessions[0].Messages, 4)
}

func TestSendCommand_NewSession(t *testing.T) {
	dir := setupCLI(t)
	testutil.CreateSnapshotFixture(t, dir, testutil.SampleSnapshot)

	_, err := runCLI(t, dir, "send", "--new", "Fresh topic")
	require.NoError(t, err)

	snapshot := readSnapshot(t, dir)
	require.Len(t, snapshot.Sessions, 3)
	first := snapshot.Sessions[0]
	assert.Equal(t, first.ID, snapshot.CurrentID())
	assert.Equal(t, "Fresh topic", first.Title)
	// the new chat inherits the previously active session's model
	assert.Equal(t, "test-model", first.ModelID)
}

func TestNewCommand(t *testing.T) {
	dir := setupCLI(t)

	out, err := runCLI(t, dir, "new", "--title", "Scratch")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	assert.NotEmpty(t, id)

	// sessions without messages are not persisted, but the selection is
	snapshot := readSnapshot(t, dir)
	assert.Empty(t, snapshot.Sessions)
	assert.Equal(t, id, snapshot.CurrentID())
}

func TestAppendCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		wantMsgs int
	}{
		{name: "user message", args: []string{"append", "chat-2", "--text", "Any takers?"}, wantMsgs: 2},
		{name: "assistant message", args: []string{"append", "chat-2", "--role", "assistant", "--text", "Yes"}, wantMsgs: 2},
		{name: "invalid role", args: []string{"append", "chat-2", "--role", "system", "--text", "x"}, wantErr: true},
		{name: "empty text", args: []string{"append", "chat-2", "--text", "  "}, wantErr: true},
		{name: "unknown session", args: []string{"append", "missing", "--text", "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupCLI(t)
			testutil.CreateSnapshotFixture(t, dir, testutil.SampleSnapshot)

			_, err := runCLI(t, dir, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			snapshot := readSnapshot(t, dir)
			// appending bumps the session to the top
			require.Equal(t, "chat-2", snapshot.Sessions[0].ID)
			assert.Len(t, snapshot.Sessions[0].Messages, tt.wantMsgs)
		})
	}
}

func TestRenameCommand(t *testing.T) {
	dir := setupCLI(t)
	testutil.CreateSnapshotFixture(t, dir, testutil.SampleSnapshot)

	_, err := runCLI(t, dir, "rename", "chat-2", "Monday", "swap")
	require.NoError(t, err)

	snapshot := readSnapshot(t, dir)
	require.Len(t, snapshot.Sessions, 2)
	// renaming does not reorder
	assert.Equal(t, "chat-1", snapshot.Sessions[0].ID)
	assert.Equal(t, "Monday swap", snapshot.Sessions[1].Title)

	_, err = runCLI(t, dir, "rename", "missing", "x")
	assert.Error(t, err)
}

func TestSelectCommand(t *testing.T) {
	dir := setupCLI(t)
	testutil.CreateSnapshotFixture(t, dir, testutil.SampleSnapshot)

	_, err := runCLI(t, dir, "select", "chat-2")
	require.NoError(t, err)
	assert.Equal(t, "chat-2", readSnapshot(t, dir).CurrentID())

	_, err = runCLI(t, dir, "select", "missing")
	assert.Error(t, err)
	assert.Equal(t, "chat-2", readSnapshot(t, dir).CurrentID())
}

func TestDeleteCommand(t *testing.T) {
	dir := setupCLI(t)
	testutil.CreateSnapshotFixture(t, dir, testutil.SampleSnapshot)

	out, err := runCLI(t, dir, "delete", "chat-1", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted chat-1")
	assert.Contains(t, out, "Skipped unknown session missing")

	snapshot := readSnapshot(t, dir)
	require.Len(t, snapshot.Sessions, 1)
	// the active session was deleted, so the next one is selected
	assert.Equal(t, "chat-2", snapshot.CurrentID())
}

func TestClearCommand(t *testing.T) {
	dir := setupCLI(t)
	testutil.CreateSnapshotFixture(t, dir, testutil.SampleSnapshot)

	_, err := runCLI(t, dir, "clear")
	require.Error(t, err)
	assert.Len(t, readSnapshot(t, dir).Sessions, 2)

	out, err := runCLI(t, dir, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 2 session(s)")

	snapshot := readSnapshot(t, dir)
	assert.Empty(t, snapshot.Sessions)
	assert.Nil(t, snapshot.CurrentChatID)
}
