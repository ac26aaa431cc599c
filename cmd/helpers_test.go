package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/chatstate/internal"
	"github.com/iksnae/chatstate/internal/panel"
	"github.com/iksnae/chatstate/testutil"
)

// resetFlags restores every flag variable; cobra keeps values between Execute calls
func resetFlags() {
	verbose = false
	configPath = ""
	backendName = ""
	storagePath = ""
	storageKey = ""

	listSearch = ""
	limit = 0
	since = ""
	format = "jsonl"
	outputDir = "./exports"
	sessionID = ""
	exportSearch = ""
	exportJobs = 4
	healthcheckVerbose = false
	newTitle = internal.NewChatTitle
	newModel = ""
	newBackground = false
	appendRole = string(internal.RoleUser)
	appendText = ""
	sendReply = ""
	sendOffline = false
	sendNew = false
	sendRegen = false
	clearYes = false
	replayConversation = "replay"
	replayJSON = false
	replayTrace = false
	replayFollow = false
	inspectFormat = "text"
	inspectPattern = "%"
	watchDebounce = 200 * time.Millisecond
}

// setupCLI isolates the CLI from the user's home and returns a file slot directory
func setupCLI(t *testing.T) string {
	t.Helper()
	home := testutil.CreateTempDir(t)
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	for _, name := range []string{
		"CHATSTATE_BACKEND", "CHATSTATE_PATH", "CHATSTATE_KEY",
		"CHATSTATE_LOG_LEVEL", "CHATSTATE_PANEL_MARKER", "CHATSTATE_MODEL",
	} {
		t.Setenv(name, "")
	}
	resetFlags()
	t.Cleanup(resetFlags)
	return filepath.Join(home, "slots")
}

// runCLI executes the root command against a file slot in dir
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	full := append([]string{"--backend", "file", "--storage", dir}, args...)
	rootCmd.SetArgs(full)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(&bytes.Buffer{})

	err := rootCmd.Execute()
	return stdout.String(), err
}

// readSnapshot loads what the CLI persisted in dir
func readSnapshot(t *testing.T, dir string) internal.Snapshot {
	t.Helper()
	slot, err := internal.NewFileSlot(dir)
	if err != nil {
		t.Fatalf("NewFileSlot() error = %v", err)
	}
	snapshot, err := internal.NewSnapshotCodec(slot, "").Load(t.Context())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return snapshot
}

func deltaLines() []string {
	return []string{
		testutil.PanelDelta(string(panel.EventOpen), ""),
		testutil.PanelDelta(string(panel.EventTitle), "Friday coverage"),
		testutil.PanelDelta(string(panel.EventSummary), "Two nurses are available"),
		`{"type":"panel-items","content":[{"id":"n1","title":"Alex"},{"id":"n2","title":"Sam","description":"Prefers nights"}]}`,
		testutil.PanelDelta(string(panel.EventStatus), "idle"),
	}
}
