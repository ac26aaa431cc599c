package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/iksnae/chatstate/internal"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

// watchCmd prints the session list whenever the persisted snapshot changes
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the session list whenever the stored snapshot changes",
	Long: `Watch the storage location and reprint the session list each time another
process persists a different snapshot. Supported for the file and sqlite backends.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, paths, err := loadConfig()
		if err != nil {
			return err
		}

		slotType := internal.SlotType(cfg.Storage.Backend)
		location := cfg.Storage.Path
		if location == "" {
			location = paths.PathFor(slotType)
		}

		var dir string
		switch slotType {
		case internal.SlotFile:
			dir = location
		case internal.SlotSQLite:
			dir = filepath.Dir(location)
		default:
			return fmt.Errorf("watch is not supported for the %s backend", slotType)
		}

		slot, err := cfg.OpenSlot(paths)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", slotType, err)
		}
		defer func() { _ = slot.Close() }()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer func() { _ = watcher.Close() }()
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}

		ctx := cmd.Context()
		codec := internal.NewSnapshotCodec(slot, cfg.Storage.Key)
		dedup := internal.NewDeduplicator()
		out := cmd.OutOrStdout()

		var last string
		refresh := func() {
			snapshot := codec.Read(ctx)
			fingerprint := dedup.Fingerprint(snapshot)
			if fingerprint == last {
				return
			}
			last = fingerprint

			sessions := make([]internal.Session, 0, len(snapshot.Sessions))
			for _, stored := range snapshot.Sessions {
				sessions = append(sessions, internal.DeserializeSession(stored))
			}
			_, _ = fmt.Fprintln(out, dateStyle.Render(time.Now().Format("15:04:05")))
			displaySessions(out, dedup.Deduplicate(sessions), snapshot.CurrentID())
		}
		refresh()

		// Writers touch several files per save; settle before rereading
		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.Canceled) {
					return nil
				}
				return ctx.Err()
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				internal.LogDebug("Storage event: %s", event)
				settle = time.After(watchDebounce)
			case <-settle:
				settle = nil
				refresh()
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				internal.LogWarn("Watcher error: %v", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "Quiet period before rereading the snapshot")
}
