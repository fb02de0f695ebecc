package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slodi/slodi/internal/users"
	"github.com/slodi/slodi/internal/workspaces"
)

func TestMembershipCacheThreeStates(t *testing.T) {
	cache := NewMembershipCache(NewMemoryStore(), time.Minute, nil, nil)
	ctx := context.Background()
	userID, wsID := uuid.New(), uuid.New()

	// Uncached pair: miss, regardless of what else is cached.
	if res := cache.Get(ctx, userID, wsID); res.State != MembershipMiss {
		t.Fatalf("expected miss for uncached pair, got %v", res.State)
	}

	role := workspaces.RoleEditor
	cache.Set(ctx, userID, wsID, &role)
	res := cache.Get(ctx, userID, wsID)
	if res.State != MembershipMember {
		t.Fatalf("expected member, got %v", res.State)
	}
	if res.Role != workspaces.RoleEditor {
		t.Fatalf("role mismatch: %v", res.Role)
	}

	// Confirmed non-member is a distinct cached state, not a miss.
	otherWS := uuid.New()
	cache.Set(ctx, userID, otherWS, nil)
	if res := cache.Get(ctx, userID, otherWS); res.State != MembershipNonMember {
		t.Fatalf("expected non-member, got %v", res.State)
	}
}

func TestMembershipCacheSetIsIdempotent(t *testing.T) {
	cache := NewMembershipCache(NewMemoryStore(), time.Minute, nil, nil)
	ctx := context.Background()
	userID, wsID := uuid.New(), uuid.New()

	role := workspaces.RoleViewer
	cache.Set(ctx, userID, wsID, &role)
	cache.Set(ctx, userID, wsID, &role)
	if res := cache.Get(ctx, userID, wsID); res.State != MembershipMember || res.Role != workspaces.RoleViewer {
		t.Fatalf("unexpected result after double set: %+v", res)
	}

	// Overwriting with a new fact wins.
	promoted := workspaces.RoleAdmin
	cache.Set(ctx, userID, wsID, &promoted)
	if res := cache.Get(ctx, userID, wsID); res.Role != workspaces.RoleAdmin {
		t.Fatalf("expected overwrite to win, got %v", res.Role)
	}
}

func TestMembershipCacheInvalidate(t *testing.T) {
	cache := NewMembershipCache(NewMemoryStore(), time.Minute, nil, nil)
	ctx := context.Background()
	userID, wsID := uuid.New(), uuid.New()

	role := workspaces.RoleOwner
	cache.Set(ctx, userID, wsID, &role)
	cache.Invalidate(ctx, userID, wsID)
	if res := cache.Get(ctx, userID, wsID); res.State != MembershipMiss {
		t.Fatalf("expected miss after invalidate, got %v", res.State)
	}
}

func TestMembershipCacheClearAll(t *testing.T) {
	store := NewMemoryStore()
	cache := NewMembershipCache(store, time.Minute, nil, nil)
	userCache := NewUserCache(store, time.Minute, nil, nil)
	ctx := context.Background()

	role := workspaces.RoleViewer
	pairs := [][2]uuid.UUID{
		{uuid.New(), uuid.New()},
		{uuid.New(), uuid.New()},
	}
	for _, p := range pairs {
		cache.Set(ctx, p[0], p[1], &role)
	}
	userCache.Set(ctx, "auth0|kept", &users.User{ID: uuid.New(), Auth0ID: "auth0|kept"})

	if err := cache.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	for _, p := range pairs {
		if res := cache.Get(ctx, p[0], p[1]); res.State != MembershipMiss {
			t.Fatalf("expected miss after flush, got %v", res.State)
		}
	}
	// The flush is namespace-scoped.
	if _, ok := userCache.Get(ctx, "auth0|kept"); !ok {
		t.Fatal("user namespace must survive a membership flush")
	}
}

func TestMembershipCacheDegradesOnStoreFailure(t *testing.T) {
	rec := newCountingRecorder()
	cache := NewMembershipCache(failingStore{}, time.Minute, nil, rec)
	ctx := context.Background()
	userID, wsID := uuid.New(), uuid.New()

	role := workspaces.RoleAdmin
	cache.Set(ctx, userID, wsID, &role) // swallowed

	if res := cache.Get(ctx, userID, wsID); res.State != MembershipMiss {
		t.Fatalf("store failure must read as miss, got %v", res.State)
	}
	if rec.calls["membership/error"] != 1 {
		t.Fatalf("expected one recorded error, got %v", rec.calls)
	}

	// ClearAll is the one operation whose failure must surface.
	if err := cache.ClearAll(ctx); err == nil {
		t.Fatal("expected ClearAll to propagate the store error")
	}
}
