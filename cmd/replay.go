package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/iksnae/chatstate/internal"
	"github.com/iksnae/chatstate/internal/panel"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	replayConversation string
	replayJSON         bool
	replayTrace        bool
	replayFollow       bool
)

var (
	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	panelLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	panelItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			PaddingLeft(2)
)

// replayCmd folds a recorded delta stream through the panel reducer
var replayCmd = &cobra.Command{
	Use:   "replay <events.jsonl|->",
	Short: "Fold recorded panel deltas and print the resulting panel",
	Long: `Read newline-delimited panel deltas and fold them through the panel reducer.

Each line is a JSON stream entry such as {"type":"panel-title","content":"Coverage"}.
Entries that are not recognised deltas are treated as unknown text; text that
contains the dashboard marker reveals the panel. With --follow the file is
watched and new lines are applied as they are appended.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		source := args[0]
		if replayFollow && source == "-" {
			return fmt.Errorf("--follow needs a file, not stdin")
		}

		var tail *eventTail
		var events []panel.Event
		if replayFollow {
			tail = &eventTail{path: source}
			events, err = tail.next()
		} else {
			events, err = readEventSource(cmd.InOrStdin(), source)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		store := panel.NewStore()
		reducer := newReducer(cfg, store)

		if replayTrace {
			cancel := panel.Watch(store, func(s panel.State) panel.Status { return s.Status }, func(status panel.Status) {
				_, _ = fmt.Fprintf(out, "%s %s\n", panelLabelStyle.Render("status →"), status)
			})
			defer cancel()
		}

		log := panel.NewLog()
		log.Append(replayConversation, events...)
		reducer.Bind(replayConversation)
		applied := reducer.Apply(replayConversation, log.Events(replayConversation))
		internal.LogDebug("Applied %d of %d event(s)", applied, len(events))

		if err := printPanel(out, store.State()); err != nil {
			return err
		}
		if !replayFollow {
			return nil
		}
		return followEvents(cmd, tail, log, reducer, store)
	},
}

// readEventSource reads events from a file, or from in when path is "-"
func readEventSource(in io.Reader, path string) ([]panel.Event, error) {
	if path == "-" {
		return panel.ReadEvents(in)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events: %w", err)
	}
	defer func() { _ = f.Close() }()
	return panel.ReadEvents(f)
}

// eventTail reads the complete lines appended to a file since the last call
type eventTail struct {
	path   string
	offset int64
}

func (t *eventTail) next() ([]panel.Event, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat events: %w", err)
	}
	if info.Size() < t.offset {
		internal.LogWarn("%s was truncated, reading it from the start", t.path)
		t.offset = 0
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek events: %w", err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	events, consumed, err := panel.ReadCompleteEvents(data)
	if err != nil {
		return nil, err
	}
	t.offset += int64(consumed)
	return events, nil
}

// followEvents tails the file, appending new entries to log while the
// reducer folds them, and reprints the panel after every change
func followEvents(cmd *cobra.Command, tail *eventTail, log *panel.Log, reducer *panel.Reducer, store *panel.Store) error {
	path := tail.path
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so editors that replace the file are still seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	cancel := store.Subscribe(func(s panel.State) {
		_, _ = fmt.Fprintln(out)
		_ = printPanel(out, s)
	})
	defer cancel()

	target := filepath.Clean(path)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return reducer.Run(ctx, log)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				events, err := tail.next()
				if err != nil {
					internal.LogWarn("Failed to reread %s: %v", path, err)
					continue
				}
				if len(events) > 0 {
					log.Append(replayConversation, events...)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				internal.LogWarn("Watcher error: %v", err)
			}
		}
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printPanel(out io.Writer, s panel.State) error {
	if replayJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	title := s.Title
	if title == "" {
		title = "(untitled panel)"
	}
	visibility := "hidden"
	if s.Visible {
		visibility = "visible"
	}

	_, _ = fmt.Fprintln(out, panelTitleStyle.Render(title))
	_, _ = fmt.Fprintf(out, "%s %s • %s • %s\n", panelLabelStyle.Render("Panel:"), visibility, s.Status, s.WorkflowMode)
	if s.Summary != "" {
		_, _ = fmt.Fprintln(out, wrapText(s.Summary, 80))
	}
	if len(s.Items) > 0 {
		_, _ = fmt.Fprintln(out, panelLabelStyle.Render(fmt.Sprintf("Items (%d):", len(s.Items))))
		for _, item := range s.Items {
			line := item.Title
			if item.Description != "" {
				line += " — " + strings.TrimSpace(item.Description)
			}
			_, _ = fmt.Fprintln(out, panelItemStyle.Render("• "+line))
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVarP(&replayConversation, "conversation", "c", "replay", "Conversation id the deltas belong to")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Print the panel state as JSON")
	replayCmd.Flags().BoolVar(&replayTrace, "trace", false, "Print every status transition")
	replayCmd.Flags().BoolVarP(&replayFollow, "follow", "f", false, "Keep watching the file for new deltas")
}
