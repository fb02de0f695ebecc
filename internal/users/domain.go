// Package users manages user accounts provisioned from the identity provider.
package users

import (
	"time"

	"github.com/google/uuid"
)

// Permission is the global permission level of a user account.
type Permission string

// Global permission levels, least to most privileged.
const (
	PermissionViewer Permission = "viewer"
	PermissionMember Permission = "member"
	PermissionAdmin  Permission = "admin"
)

// Rank returns the privilege rank of the permission. Comparisons between
// permissions must go through Rank, never through string comparison.
// Unknown values rank below every defined level.
func (p Permission) Rank() int {
	switch p {
	case PermissionViewer:
		return 0
	case PermissionMember:
		return 1
	case PermissionAdmin:
		return 2
	default:
		return -1
	}
}

// AtLeast reports whether p is at least as privileged as minimum.
func (p Permission) AtLeast(minimum Permission) bool {
	return p.Rank() >= minimum.Rank()
}

// Valid reports whether p is a defined permission level.
func (p Permission) Valid() bool {
	return p.Rank() >= 0
}

// Pronouns is the user's self-selected pronoun set.
type Pronouns string

const (
	PronounsSheHer         Pronouns = "she/her"
	PronounsHeHim          Pronouns = "he/him"
	PronounsTheyThem       Pronouns = "they/them"
	PronounsOther          Pronouns = "other"
	PronounsPreferNotToSay Pronouns = "prefer not to say"
)

// User represents a user account backed by an identity-provider subject.
type User struct {
	ID          uuid.UUID      `json:"id"`
	Auth0ID     string         `json:"auth0_id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Pronouns    Pronouns       `json:"pronouns,omitempty"`
	Permission  Permission     `json:"permissions"`
	Preferences map[string]any `json:"preferences,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewUser carries the fields required to provision an account on first login.
type NewUser struct {
	Auth0ID string
	Email   string
	Name    string
}
