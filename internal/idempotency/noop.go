package idempotency

import (
	"context"
	"time"
)

// NoopStore never remembers anything. Wired when no cache is configured so
// postings always process instead of failing; duplicate suppression is lost.
type NoopStore struct{}

// NewNoopStore builds the disabled store.
func NewNoopStore() NoopStore { return NoopStore{} }

func (NoopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
