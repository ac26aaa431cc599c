package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearConfigEnv blanks every override so the host environment cannot leak in
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CHATSTATE_BACKEND", "CHATSTATE_PATH", "CHATSTATE_KEY",
		"CHATSTATE_REDIS_ADDR", "CHATSTATE_REDIS_PASSWORD", "CHATSTATE_REDIS_DB", "CHATSTATE_REDIS_TTL",
		"CHATSTATE_LOG_LEVEL", "CHATSTATE_PANEL_MARKER", "CHATSTATE_MODEL",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, string(SlotFile), cfg.Storage.Backend)
	assert.Equal(t, DefaultStorageKey, cfg.Storage.Key)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "[dashboard]", cfg.Panel.Marker)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing files use defaults", func(t *testing.T) {
		clearConfigEnv(t)
		dir := t.TempDir()

		cfg, err := LoadConfig(filepath.Join(dir, "config.yaml"), filepath.Join(dir, ".env"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		clearConfigEnv(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: sqlite
  path: /tmp/chat.db
  redis:
    ttl: 1h
logging:
  level: debug
chat:
  model_id: test-model
`), 0644))

		cfg, err := LoadConfig(path, "")
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Storage.Backend)
		assert.Equal(t, "/tmp/chat.db", cfg.Storage.Path)
		assert.Equal(t, DefaultStorageKey, cfg.Storage.Key)
		assert.Equal(t, time.Hour, cfg.Storage.Redis.TTL)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "test-model", cfg.Chat.ModelID)
	})

	t.Run("env overrides yaml", func(t *testing.T) {
		clearConfigEnv(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: sqlite\n"), 0644))
		t.Setenv("CHATSTATE_BACKEND", " Pebble ")
		t.Setenv("CHATSTATE_REDIS_DB", "3")
		t.Setenv("CHATSTATE_REDIS_TTL", "not-a-duration")

		cfg, err := LoadConfig(path, "")
		require.NoError(t, err)
		assert.Equal(t, "pebble", cfg.Storage.Backend)
		assert.Equal(t, 3, cfg.Storage.Redis.DB)
		assert.Zero(t, cfg.Storage.Redis.TTL)
	})

	t.Run("env file is loaded", func(t *testing.T) {
		clearConfigEnv(t)
		os.Unsetenv("CHATSTATE_MODEL")
		dir := t.TempDir()
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("CHATSTATE_MODEL=from-env-file\n"), 0644))

		cfg, err := LoadConfig("", envFile)
		require.NoError(t, err)
		assert.Equal(t, "from-env-file", cfg.Chat.ModelID)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		clearConfigEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0644))

		_, err := LoadConfig(path, "")
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "config", parseErr.Source)
	})

	t.Run("invalid backend", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("CHATSTATE_BACKEND", "floppy")

		_, err := LoadConfig("", "")
		assert.ErrorIs(t, err, ErrInvalidSlotType)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "redis backend", mutate: func(c *Config) { c.Storage.Backend = string(SlotRedis) }},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "tape" }, wantErr: ErrInvalidSlotType},
		{name: "empty key", mutate: func(c *Config) { c.Storage.Key = "" }, wantErr: ErrInvalidConfig},
		{name: "negative ttl", mutate: func(c *Config) { c.Storage.Redis.TTL = -time.Second }, wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_OpenSlot(t *testing.T) {
	base := t.TempDir()
	paths := DataPaths{BaseDir: filepath.Join(base, "data")}

	tests := []struct {
		name     string
		backend  SlotType
		path     string
		wantType interface{}
		wantFile string
	}{
		{name: "memory", backend: SlotMemory, wantType: &MemorySlot{}},
		{name: "file default dir", backend: SlotFile, wantType: &FileSlot{}, wantFile: paths.PathFor(SlotFile)},
		{name: "sqlite default path", backend: SlotSQLite, wantType: &SQLiteSlot{}, wantFile: paths.PathFor(SlotSQLite)},
		{name: "sqlite explicit path", backend: SlotSQLite, path: filepath.Join(base, "x", "kv.db"), wantType: &SQLiteSlot{}, wantFile: filepath.Join(base, "x", "kv.db")},
		{name: "pebble", backend: SlotPebble, wantType: &PebbleSlot{}, wantFile: paths.PathFor(SlotPebble)},
		{name: "redis", backend: SlotRedis, wantType: &RedisSlot{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Storage.Backend = string(tt.backend)
			cfg.Storage.Path = tt.path

			slot, err := cfg.OpenSlot(paths)
			require.NoError(t, err)
			defer slot.Close()

			assert.IsType(t, tt.wantType, slot)
			if tt.wantFile != "" {
				_, err := os.Stat(tt.wantFile)
				assert.NoError(t, err)
			}
		})
	}
}
