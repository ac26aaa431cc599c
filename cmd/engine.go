package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/chatstate/internal"
	"github.com/iksnae/chatstate/internal/panel"
)

// engine bundles the configured slot, codec and loaded history store
type engine struct {
	config  *internal.Config
	paths   internal.DataPaths
	slot    internal.Slot
	codec   *internal.SnapshotCodec
	history *internal.HistoryStore
}

// loadConfig resolves the config file and applies command-line overrides
func loadConfig() (*internal.Config, internal.DataPaths, error) {
	paths, err := internal.DetectDataPaths()
	if err != nil {
		return nil, internal.DataPaths{}, fmt.Errorf("failed to detect data paths: %w", err)
	}

	path := configPath
	if path == "" {
		path = paths.ConfigFile
	}
	cfg, err := internal.LoadConfig(path, paths.EnvFile)
	if err != nil {
		return nil, paths, fmt.Errorf("failed to load config: %w", err)
	}

	if backendName != "" {
		cfg.Storage.Backend = backendName
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}
	if storageKey != "" {
		cfg.Storage.Key = storageKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, paths, err
	}

	if !verbose {
		internal.SetLogLevel(internal.ParseLogLevel(cfg.Logging.Level))
	}
	return cfg, paths, nil
}

// openEngine opens the slot and loads the history store
func openEngine(ctx context.Context) (*engine, error) {
	cfg, paths, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Path == "" {
		if err := paths.EnsureBaseDir(); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	slot, err := cfg.OpenSlot(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	codec := internal.NewSnapshotCodec(slot, cfg.Storage.Key)
	history := internal.NewHistoryStore(codec)
	history.Load(ctx)

	internal.LogDebug("Opened %s storage, %d session(s) loaded", cfg.Storage.Backend, len(history.Sessions()))

	return &engine{
		config:  cfg,
		paths:   paths,
		slot:    slot,
		codec:   codec,
		history: history,
	}, nil
}

// newReducer builds a panel reducer honouring the configured marker
func newReducer(cfg *internal.Config, store *panel.Store) *panel.Reducer {
	return panel.NewReducer(store,
		panel.WithLogger(internal.Logger()),
		panel.WithMarker(cfg.Panel.Marker))
}

// Close flushes pending writes and releases the slot
func (e *engine) Close(ctx context.Context) error {
	if err := e.history.Flush(ctx); err != nil {
		internal.LogWarn("Failed to flush history: %v", err)
	}
	_ = e.history.Close()
	return e.slot.Close()
}
