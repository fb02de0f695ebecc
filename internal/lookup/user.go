package lookup

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/slodi/slodi/internal/users"
)

const userNamespace = "user:"

// UserCache maps an identity-provider subject id to a user snapshot.
// Absence always means "not yet cached", never "confirmed nonexistent":
// unknown subjects are provisioned on first login, so negative results
// are not cached at this layer.
type UserCache struct {
	store    Store
	ttl      time.Duration
	logger   *slog.Logger
	recorder Recorder
}

// NewUserCache constructs a UserCache.
func NewUserCache(store Store, ttl time.Duration, logger *slog.Logger, recorder Recorder) *UserCache {
	return &UserCache{store: store, ttl: ttl, logger: logger, recorder: recorder}
}

// Get returns the cached snapshot for auth0ID, or false on a miss.
// Store failures degrade to a miss.
func (c *UserCache) Get(ctx context.Context, auth0ID string) (*users.User, bool) {
	value, ok, err := c.store.Get(ctx, userNamespace+auth0ID)
	if err != nil {
		c.warn("user cache get", err)
		record(c.recorder, "user", outcomeError)
		return nil, false
	}
	if !ok {
		record(c.recorder, "user", outcomeMiss)
		return nil, false
	}
	var user users.User
	if err := json.Unmarshal(value, &user); err != nil {
		c.warn("user cache decode", err)
		record(c.recorder, "user", outcomeError)
		return nil, false
	}
	record(c.recorder, "user", outcomeHit)
	return &user, true
}

// Set stores a snapshot for auth0ID.
func (c *UserCache) Set(ctx context.Context, auth0ID string, user *users.User) {
	value, err := json.Marshal(user)
	if err != nil {
		c.warn("user cache encode", err)
		return
	}
	if err := c.store.Set(ctx, userNamespace+auth0ID, value, c.ttl); err != nil {
		c.warn("user cache set", err)
	}
}

// Invalidate drops the snapshot for auth0ID.
func (c *UserCache) Invalidate(ctx context.Context, auth0ID string) {
	if err := c.store.Delete(ctx, userNamespace+auth0ID); err != nil {
		c.warn("user cache invalidate", err)
	}
}

func (c *UserCache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, slog.Any("error", err))
	}
}
