// Package workspaces manages workspace membership facts consumed by the
// authorization layer.
package workspaces

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's role within a workspace.
type Role string

// Workspace roles, least to most privileged.
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

// Membership records that a user belongs to a workspace with a role.
type Membership struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        Role      `json:"role"`
}

// Workspace is the subset of the workspace record the core reads.
type Workspace struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
