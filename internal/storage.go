package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Slot is a durable key-value slot holding opaque payloads.
// Get returns ErrKeyNotFound when the key has never been written.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SlotType selects a slot driver
type SlotType string

const (
	SlotMemory SlotType = "memory"
	SlotFile   SlotType = "file"
	SlotSQLite SlotType = "sqlite"
	SlotPebble SlotType = "pebble"
	SlotRedis  SlotType = "redis"
)

// SlotTypes lists the supported drivers in display order
var SlotTypes = []SlotType{SlotMemory, SlotFile, SlotSQLite, SlotPebble, SlotRedis}

// SlotOption is a functional option for configuring a slot
type SlotOption func(*slotConfig)

type slotConfig struct {
	path        string
	redisClient *redis.Client
	redisTTL    time.Duration
	redisPrefix string
}

// WithPath sets the on-disk location for the file, sqlite and pebble drivers
func WithPath(path string) SlotOption {
	return func(c *slotConfig) {
		c.path = path
	}
}

// WithRedisClient sets the client used by the redis driver
func WithRedisClient(client *redis.Client) SlotOption {
	return func(c *slotConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the key expiry for the redis driver. Zero keeps keys forever.
func WithRedisTTL(ttl time.Duration) SlotOption {
	return func(c *slotConfig) {
		c.redisTTL = ttl
	}
}

// WithRedisPrefix namespaces keys written by the redis driver
func WithRedisPrefix(prefix string) SlotOption {
	return func(c *slotConfig) {
		c.redisPrefix = prefix
	}
}

// NewSlot opens a slot of the given type.
// File, sqlite and pebble need WithPath; redis needs WithRedisClient.
func NewSlot(slotType SlotType, opts ...SlotOption) (Slot, error) {
	config := &slotConfig{}
	for _, opt := range opts {
		opt(config)
	}

	switch slotType {
	case SlotMemory:
		return NewMemorySlot(), nil

	case SlotFile:
		if config.path == "" {
			return nil, fmt.Errorf("%w: file slot requires a directory", ErrInvalidConfig)
		}
		return NewFileSlot(config.path)

	case SlotSQLite:
		if config.path == "" {
			return nil, fmt.Errorf("%w: sqlite slot requires a database path", ErrInvalidConfig)
		}
		return NewSQLiteSlot(config.path)

	case SlotPebble:
		if config.path == "" {
			return nil, fmt.Errorf("%w: pebble slot requires a directory", ErrInvalidConfig)
		}
		return NewPebbleSlot(config.path)

	case SlotRedis:
		if config.redisClient == nil {
			return nil, fmt.Errorf("%w: redis slot requires a client", ErrInvalidConfig)
		}
		return NewRedisSlot(config.redisClient, config.redisTTL, config.redisPrefix), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlotType, slotType)
	}
}

// MemorySlot keeps payloads in process memory. Useful for tests and
// ephemeral sessions.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

// NewMemorySlot creates an empty memory slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

// Get implements Slot.
func (s *MemorySlot) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, &StorageError{Key: key, Op: "get", Err: ErrStoreClosed}
	}
	value, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set implements Slot.
func (s *MemorySlot) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &StorageError{Key: key, Op: "set", Err: ErrStoreClosed}
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

// Delete implements Slot.
func (s *MemorySlot) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &StorageError{Key: key, Op: "delete", Err: ErrStoreClosed}
	}
	delete(s.values, key)
	return nil
}

// Close implements Slot.
func (s *MemorySlot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.values = nil
	return nil
}
