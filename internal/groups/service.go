package groups

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for group memberships.
type RepositoryPort interface {
	FindMembership(ctx context.Context, userID, groupID uuid.UUID) (Role, bool, error)
}

// Service handles group membership lookups.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Membership returns the authoritative role of a user in a group.
func (s *Service) Membership(ctx context.Context, userID, groupID uuid.UUID) (Role, bool, error) {
	return s.repo.FindMembership(ctx, userID, groupID)
}
