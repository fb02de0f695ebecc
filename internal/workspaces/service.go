package workspaces

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for workspaces.
type RepositoryPort interface {
	FindMembership(ctx context.Context, userID, workspaceID uuid.UUID) (Role, bool, error)
	Find(ctx context.Context, id uuid.UUID) (*Workspace, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// MembershipInvalidator flushes the membership cache namespace. Once a
// workspace is gone every cached membership fact about it is meaningless.
type MembershipInvalidator interface {
	ClearAll(ctx context.Context) error
}

// FlushEnqueuer hands the membership-cache flush to the background worker.
type FlushEnqueuer interface {
	EnqueueMembershipFlush(ctx context.Context, workspaceID uuid.UUID) error
}

// Service handles workspace lifecycle operations owned by this core.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	cache    MembershipInvalidator
	enqueuer FlushEnqueuer
}

// NewService constructs a Service. enqueuer may be nil; the flush then
// happens inline.
func NewService(logger *slog.Logger, repo RepositoryPort, cache MembershipInvalidator, enqueuer FlushEnqueuer) *Service {
	return &Service{logger: logger, repo: repo, cache: cache, enqueuer: enqueuer}
}

// Find fetches a workspace by id.
func (s *Service) Find(ctx context.Context, id uuid.UUID) (*Workspace, error) {
	return s.repo.Find(ctx, id)
}

// Membership returns the authoritative role of a user in a workspace.
func (s *Service) Membership(ctx context.Context, userID, workspaceID uuid.UUID) (Role, bool, error) {
	return s.repo.FindMembership(ctx, userID, workspaceID)
}

// Delete soft-deletes a workspace and flushes the membership cache
// namespace so stale roles cannot outlive the workspace.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueMembershipFlush(ctx, id); err == nil {
			return nil
		} else if s.logger != nil {
			s.logger.Warn("enqueue membership flush", slog.Any("error", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.ClearAll(ctx); err != nil && s.logger != nil {
			s.logger.Warn("flush membership cache", slog.Any("error", err))
		}
	}
	return nil
}
