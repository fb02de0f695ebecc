// Package groups manages group membership facts consumed by the
// authorization layer. Group lookups are infrequent enough that they go
// straight to the store, without a cache in front.
package groups

import "github.com/google/uuid"

// Role is a user's role within a group.
type Role string

// Group roles, least to most privileged.
const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// Rank returns the privilege rank of the role. Unknown values rank below
// every defined role.
func (r Role) Rank() int {
	switch r {
	case RoleViewer:
		return 0
	case RoleEditor:
		return 1
	case RoleAdmin:
		return 2
	case RoleOwner:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether r is at least as privileged as minimum.
func (r Role) AtLeast(minimum Role) bool {
	return r.Rank() >= minimum.Rank()
}

// Membership records that a user belongs to a group with a role.
type Membership struct {
	GroupID uuid.UUID `json:"group_id"`
	UserID  uuid.UUID `json:"user_id"`
	Role    Role      `json:"role"`
}
