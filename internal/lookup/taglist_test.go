package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slodi/slodi/internal/tags"
)

func TestTagListCacheRoundTrip(t *testing.T) {
	cache := NewTagListCache(NewMemoryStore(), time.Minute, nil, nil)
	ctx := context.Background()

	if _, ok := cache.Get(ctx); ok {
		t.Fatal("expected miss before set")
	}

	list := []tags.Tag{
		{ID: uuid.New(), Name: "útivist"},
		{ID: uuid.New(), Name: "íþróttir"},
	}
	cache.Set(ctx, list)

	got, ok := cache.Get(ctx)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if len(got) != 2 || got[0].Name != "útivist" || got[1].Name != "íþróttir" {
		t.Fatalf("list mismatch: %+v", got)
	}

	cache.Invalidate(ctx)
	if _, ok := cache.Get(ctx); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestTagListCacheDegradesOnStoreFailure(t *testing.T) {
	cache := NewTagListCache(failingStore{}, time.Minute, nil, nil)
	ctx := context.Background()

	cache.Set(ctx, []tags.Tag{{ID: uuid.New(), Name: "jóga"}}) // swallowed
	if _, ok := cache.Get(ctx); ok {
		t.Fatal("store failure must read as miss")
	}
}
