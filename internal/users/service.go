package users

import (
	"context"
	"strings"
)

// RepositoryPort defines data access methods for user accounts.
type RepositoryPort interface {
	FindByAuth0ID(ctx context.Context, auth0ID string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, nu NewUser) (*User, error)
	UpdateProfile(ctx context.Context, id string, name string, pronouns Pronouns, preferences map[string]any) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// Service handles user account business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// FindByAuth0ID fetches an account by identity-provider subject id.
func (s *Service) FindByAuth0ID(ctx context.Context, auth0ID string) (*User, error) {
	return s.repo.FindByAuth0ID(ctx, auth0ID)
}

// Provision creates an account on first login. Email is normalized to
// lower case; a missing display name falls back to the email address.
func (s *Service) Provision(ctx context.Context, nu NewUser) (*User, error) {
	nu.Email = strings.ToLower(strings.TrimSpace(nu.Email))
	nu.Name = strings.TrimSpace(nu.Name)
	if nu.Name == "" {
		nu.Name = nu.Email
	}
	return s.repo.Create(ctx, nu)
}

// UpdateProfile updates the caller's own profile fields.
func (s *Service) UpdateProfile(ctx context.Context, id string, name string, pronouns Pronouns, preferences map[string]any) (*User, error) {
	return s.repo.UpdateProfile(ctx, id, strings.TrimSpace(name), pronouns, preferences)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}
