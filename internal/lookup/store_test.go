package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// storeFactories lets every store-contract test run against both backends.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisStore(client)
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			if _, ok, err := store.Get(ctx, "absent"); err != nil || ok {
				t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
			}

			if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
				t.Fatalf("set: %v", err)
			}
			value, ok, err := store.Get(ctx, "k")
			if err != nil || !ok {
				t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
			}
			if string(value) != "v" {
				t.Fatalf("value mismatch: %q", value)
			}

			if err := store.Delete(ctx, "k"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := store.Get(ctx, "k"); ok {
				t.Fatal("expected miss after delete")
			}
		})
	}
}

func TestStoreDeletePrefix(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			for _, key := range []string{"membership:a", "membership:b", "user:c"} {
				if err := store.Set(ctx, key, []byte("x"), time.Minute); err != nil {
					t.Fatalf("set %s: %v", key, err)
				}
			}

			if err := store.DeletePrefix(ctx, "membership:"); err != nil {
				t.Fatalf("delete prefix: %v", err)
			}

			for _, key := range []string{"membership:a", "membership:b"} {
				if _, ok, _ := store.Get(ctx, key); ok {
					t.Fatalf("expected %s to be flushed", key)
				}
			}
			if _, ok, _ := store.Get(ctx, "user:c"); !ok {
				t.Fatal("keys outside the namespace must survive a flush")
			}
		})
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected miss after TTL elapsed")
	}
}

// failingStore simulates a broken backend for degradation tests.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (failingStore) Delete(context.Context, string) error      { return errStoreDown }
func (failingStore) DeletePrefix(context.Context, string) error { return errStoreDown }

// countingRecorder collects outcomes per namespace.
type countingRecorder struct {
	calls map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{calls: make(map[string]int)}
}

func (r *countingRecorder) RecordCacheLookup(namespace, outcome string) {
	r.calls[namespace+"/"+outcome]++
}
