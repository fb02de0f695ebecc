// Package lookup provides short-TTL caches in front of the persistent
// store for read-heavy, low-churn facts: the authenticated user snapshot,
// workspace membership roles, and the tag reference list.
//
// Cache failures never reach callers; a broken backing store degrades to
// "always miss" and the authoritative source is consulted instead.
package lookup

import (
	"context"
	"time"
)

// Store abstracts the backing key-value store. The in-process
// implementation serves single-instance deployments, the Redis one
// serves multi-instance deployments.
type Store interface {
	// Get returns the value for key. The second return value is false
	// when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key in a namespace.
	DeletePrefix(ctx context.Context, prefix string) error
}

// Recorder counts cache lookups per namespace for observability.
// Implemented by observability.Metrics; may be nil everywhere.
type Recorder interface {
	RecordCacheLookup(namespace, outcome string)
}

// Lookup outcomes reported to the Recorder.
const (
	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeError = "error"
)

func record(rec Recorder, namespace, outcome string) {
	if rec != nil {
		rec.RecordCacheLookup(namespace, outcome)
	}
}
