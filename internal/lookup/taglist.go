package lookup

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/slodi/slodi/internal/tags"
)

const tagListKey = "tags:all"

// TagListCache is a single-slot cache for the tag reference list.
type TagListCache struct {
	store    Store
	ttl      time.Duration
	logger   *slog.Logger
	recorder Recorder
}

// NewTagListCache constructs a TagListCache.
func NewTagListCache(store Store, ttl time.Duration, logger *slog.Logger, recorder Recorder) *TagListCache {
	return &TagListCache{store: store, ttl: ttl, logger: logger, recorder: recorder}
}

// Get returns the cached list, or false on a miss.
func (c *TagListCache) Get(ctx context.Context) ([]tags.Tag, bool) {
	value, ok, err := c.store.Get(ctx, tagListKey)
	if err != nil {
		c.warn("tag cache get", err)
		record(c.recorder, "tags", outcomeError)
		return nil, false
	}
	if !ok {
		record(c.recorder, "tags", outcomeMiss)
		return nil, false
	}
	var list []tags.Tag
	if err := json.Unmarshal(value, &list); err != nil {
		c.warn("tag cache decode", err)
		record(c.recorder, "tags", outcomeError)
		return nil, false
	}
	record(c.recorder, "tags", outcomeHit)
	return list, true
}

// Set stores the list.
func (c *TagListCache) Set(ctx context.Context, list []tags.Tag) {
	value, err := json.Marshal(list)
	if err != nil {
		c.warn("tag cache encode", err)
		return
	}
	if err := c.store.Set(ctx, tagListKey, value, c.ttl); err != nil {
		c.warn("tag cache set", err)
	}
}

// Invalidate drops the cached list.
func (c *TagListCache) Invalidate(ctx context.Context) {
	if err := c.store.Delete(ctx, tagListKey); err != nil {
		c.warn("tag cache invalidate", err)
	}
}

func (c *TagListCache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, slog.Any("error", err))
	}
}

var _ tags.ListCache = (*TagListCache)(nil)
