// Package idempotency remembers the response payload returned for a
// client-supplied idempotency token so retried postings can be answered
// without touching the ledger. Values are opaque blobs; serialization is
// the caller's concern.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idempotency:v1:"

// ErrUnavailable indicates the backing store could not be reached.
// Absence of a key is never an error.
var ErrUnavailable = errors.New("idempotency store unavailable")

// Store is a key/value cache with per-key expiry.
type Store interface {
	// Get returns the stored payload and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set records the payload under key for ttl. Callers decide whether a
	// failure matters; the store just reports it.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore keeps idempotency records in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed idempotency store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %q: %v: %w", key, err, ErrUnavailable)
	}
	return raw, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %q: %v: %w", key, err, ErrUnavailable)
	}
	return nil
}
