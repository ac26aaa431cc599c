package internal

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores payloads as redis string keys
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisSlot wraps a redis client. A zero ttl keeps keys forever.
func NewRedisSlot(client *redis.Client, ttl time.Duration, prefix string) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl, prefix: prefix}
}

func (s *RedisSlot) redisKey(key string) string {
	return s.prefix + key
}

// Get implements Slot.
func (s *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, &StorageError{Key: key, Op: "get", Err: err}
	}

	// Refresh TTL on read
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, s.redisKey(key), s.ttl).Err()
	}
	return val, nil
}

// Set implements Slot.
func (s *RedisSlot) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), value, s.ttl).Err(); err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements Slot.
func (s *RedisSlot) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close implements Slot.
func (s *RedisSlot) Close() error {
	return s.client.Close()
}
