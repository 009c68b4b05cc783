package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return NewRedisStore(client), mr, cleanup
}

func TestStoreAbsenceIsNotAnError(t *testing.T) {
	store, _, cleanup := setupStore(t)
	defer cleanup()

	value, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found || value != nil {
		t.Fatalf("expected absence, got found=%v value=%q", found, value)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, _, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	payload := []byte(`{"status":"ok"}`)
	if err := store.Set(ctx, "tok-1", payload, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, found, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || string(got) != string(payload) {
		t.Fatalf("expected stored payload, got found=%v value=%s", found, got)
	}
}

func TestStoreExpiry(t *testing.T) {
	store, mr, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Set(ctx, "tok-ttl", []byte("x"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	_, found, err := store.Get(ctx, "tok-ttl")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("key survived its TTL")
	}
}

func TestStoreUnavailable(t *testing.T) {
	store, mr, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	mr.SetError("LOADING Redis is loading the dataset in memory")

	if _, _, err := store.Get(ctx, "tok-down"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := store.Set(ctx, "tok-down", []byte("x"), time.Minute); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestStoreKeysAreNamespaced(t *testing.T) {
	store, mr, cleanup := setupStore(t)
	defer cleanup()

	if err := store.Set(context.Background(), "tok-ns", []byte("x"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("idempotency:v1:tok-ns") {
		t.Fatal("expected prefixed key in redis")
	}
}
