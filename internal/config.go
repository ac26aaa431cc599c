package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Panel   PanelConfig   `yaml:"panel"`
	Chat    ChatConfig    `yaml:"chat"`
}

// StorageConfig selects and configures the slot driver
type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Key     string      `yaml:"key"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis driver
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PanelConfig configures the panel reducer
type PanelConfig struct {
	Marker string `yaml:"marker"`
}

// ChatConfig holds conversation defaults
type ChatConfig struct {
	ModelID string `yaml:"model_id"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: string(SlotFile),
			Key:     DefaultStorageKey,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "chatstate:",
			},
		},
		Logging: LoggingConfig{Level: "info"},
		Panel:   PanelConfig{Marker: "[dashboard]"},
	}
}

// LoadConfig reads path (if it exists) over the defaults, loads envFile into
// the environment, then applies CHATSTATE_* overrides. Missing files are not errors.
func LoadConfig(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			LogWarn("Failed to load env file %s: %v", envFile, err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, &ParseError{Source: "config", Key: path, Err: err}
			}
		case errors.Is(err, os.ErrNotExist):
			LogDebug("No config file at %s, using defaults", path)
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHATSTATE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("CHATSTATE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("CHATSTATE_KEY"); v != "" {
		c.Storage.Key = v
	}
	if v := os.Getenv("CHATSTATE_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("CHATSTATE_REDIS_PASSWORD"); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := os.Getenv("CHATSTATE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Storage.Redis.DB = db
		}
	}
	if v := os.Getenv("CHATSTATE_REDIS_TTL"); v != "" {
		if ttl, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			c.Storage.Redis.TTL = ttl
		}
	}
	if v := os.Getenv("CHATSTATE_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("CHATSTATE_PANEL_MARKER"); v != "" {
		c.Panel.Marker = v
	}
	if v := os.Getenv("CHATSTATE_MODEL"); v != "" {
		c.Chat.ModelID = v
	}
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	if !validSlotType(SlotType(c.Storage.Backend)) {
		return fmt.Errorf("%w: storage.backend %q", ErrInvalidSlotType, c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("%w: storage.key is empty", ErrInvalidConfig)
	}
	if c.Storage.Redis.TTL < 0 {
		return fmt.Errorf("%w: storage.redis.ttl is negative", ErrInvalidConfig)
	}
	return nil
}

// OpenSlot opens the configured slot. Paths default to the detected data directory.
func (c *Config) OpenSlot(paths DataPaths) (Slot, error) {
	slotType := SlotType(c.Storage.Backend)
	path := c.Storage.Path
	if path == "" {
		path = paths.PathFor(slotType)
	}

	switch slotType {
	case SlotRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Storage.Redis.Addr,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
		})
		return NewSlot(slotType,
			WithRedisClient(client),
			WithRedisTTL(c.Storage.Redis.TTL),
			WithRedisPrefix(c.Storage.Redis.Prefix))
	case SlotSQLite:
		if path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, &StorageError{Key: path, Op: "open", Err: err}
			}
		}
		return NewSlot(slotType, WithPath(path))
	default:
		return NewSlot(slotType, WithPath(path))
	}
}

func validSlotType(t SlotType) bool {
	for _, known := range SlotTypes {
		if t == known {
			return true
		}
	}
	return false
}
