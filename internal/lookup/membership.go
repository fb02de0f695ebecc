package lookup

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slodi/slodi/internal/workspaces"
)

const membershipNamespace = "membership:"

// MembershipState distinguishes the three possible answers of a
// membership lookup. A cached "confirmed non-member" must never be
// mistaken for an uncached pair, so the state is explicit rather than
// signalled through an absent value.
type MembershipState int

const (
	// MembershipMiss means the pair has not been cached; consult the
	// authoritative store.
	MembershipMiss MembershipState = iota
	// MembershipNonMember means the store confirmed there is no
	// membership row for the pair.
	MembershipNonMember
	// MembershipMember means the pair is cached with a role.
	MembershipMember
)

// MembershipResult is the three-state outcome of a membership lookup.
type MembershipResult struct {
	State MembershipState
	Role  workspaces.Role
}

// membershipEntry is the stored form. A stored entry with Member=false
// is the explicit non-member marker, distinct from an absent key.
type membershipEntry struct {
	Member bool            `json:"member"`
	Role   workspaces.Role `json:"role,omitempty"`
}

// MembershipCache maps (user, workspace) to a role or a confirmed
// non-member marker.
type MembershipCache struct {
	store    Store
	ttl      time.Duration
	logger   *slog.Logger
	recorder Recorder
}

// NewMembershipCache constructs a MembershipCache.
func NewMembershipCache(store Store, ttl time.Duration, logger *slog.Logger, recorder Recorder) *MembershipCache {
	return &MembershipCache{store: store, ttl: ttl, logger: logger, recorder: recorder}
}

func membershipKey(userID, workspaceID uuid.UUID) string {
	return membershipNamespace + userID.String() + ":" + workspaceID.String()
}

// Get returns the cached membership fact for the pair. Store failures
// degrade to a miss.
func (c *MembershipCache) Get(ctx context.Context, userID, workspaceID uuid.UUID) MembershipResult {
	value, ok, err := c.store.Get(ctx, membershipKey(userID, workspaceID))
	if err != nil {
		c.warn("membership cache get", err)
		record(c.recorder, "membership", outcomeError)
		return MembershipResult{State: MembershipMiss}
	}
	if !ok {
		record(c.recorder, "membership", outcomeMiss)
		return MembershipResult{State: MembershipMiss}
	}
	var entry membershipEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		c.warn("membership cache decode", err)
		record(c.recorder, "membership", outcomeError)
		return MembershipResult{State: MembershipMiss}
	}
	record(c.recorder, "membership", outcomeHit)
	if !entry.Member {
		return MembershipResult{State: MembershipNonMember}
	}
	return MembershipResult{State: MembershipMember, Role: entry.Role}
}

// Set stores the membership fact for the pair. A nil role records the
// confirmed non-member marker.
func (c *MembershipCache) Set(ctx context.Context, userID, workspaceID uuid.UUID, role *workspaces.Role) {
	entry := membershipEntry{}
	if role != nil {
		entry.Member = true
		entry.Role = *role
	}
	value, err := json.Marshal(entry)
	if err != nil {
		c.warn("membership cache encode", err)
		return
	}
	if err := c.store.Set(ctx, membershipKey(userID, workspaceID), value, c.ttl); err != nil {
		c.warn("membership cache set", err)
	}
}

// Invalidate drops the fact for the pair.
func (c *MembershipCache) Invalidate(ctx context.Context, userID, workspaceID uuid.UUID) {
	if err := c.store.Delete(ctx, membershipKey(userID, workspaceID)); err != nil {
		c.warn("membership cache invalidate", err)
	}
}

// ClearAll flushes the entire namespace. Called when a workspace is
// deleted, since every membership fact about it becomes meaningless.
func (c *MembershipCache) ClearAll(ctx context.Context) error {
	return c.store.DeletePrefix(ctx, membershipNamespace)
}

func (c *MembershipCache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, slog.Any("error", err))
	}
}
