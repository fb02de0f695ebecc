package users

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/slodi/slodi/internal/platform/httpx"
)

type mockRepo struct {
	created *NewUser
	byAuth0 map[string]*User
}

func (m *mockRepo) FindByAuth0ID(_ context.Context, auth0ID string) (*User, error) {
	if u, ok := m.byAuth0[auth0ID]; ok {
		return u, nil
	}
	return nil, httpx.ErrNotFound
}

func (m *mockRepo) FindByID(context.Context, string) (*User, error) {
	return nil, httpx.ErrNotFound
}

func (m *mockRepo) Create(_ context.Context, nu NewUser) (*User, error) {
	m.created = &nu
	return &User{ID: uuid.New(), Auth0ID: nu.Auth0ID, Email: nu.Email, Name: nu.Name, Permission: PermissionViewer}, nil
}

func (m *mockRepo) UpdateProfile(_ context.Context, _ string, name string, pronouns Pronouns, preferences map[string]any) (*User, error) {
	return &User{Name: name, Pronouns: pronouns, Preferences: preferences}, nil
}

func (m *mockRepo) List(context.Context) ([]User, error) { return nil, nil }

func TestProvisionNormalizesEmail(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	got, err := svc.Provision(context.Background(), NewUser{
		Auth0ID: "auth0|edda",
		Email:   "  Edda@Slodi.IS ",
		Name:    " Edda ",
	})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if repo.created.Email != "edda@slodi.is" {
		t.Fatalf("email not normalized: %q", repo.created.Email)
	}
	if repo.created.Name != "Edda" {
		t.Fatalf("name not trimmed: %q", repo.created.Name)
	}
	if got.Permission != PermissionViewer {
		t.Fatalf("new accounts must start as viewer, got %q", got.Permission)
	}
}

func TestProvisionNameFallsBackToEmail(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	_, err := svc.Provision(context.Background(), NewUser{
		Auth0ID: "auth0|nafnlaus",
		Email:   "nafnlaus@slodi.is",
	})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if repo.created.Name != "nafnlaus@slodi.is" {
		t.Fatalf("expected email fallback, got %q", repo.created.Name)
	}
}

func TestUpdateProfileTrimsName(t *testing.T) {
	svc := NewService(&mockRepo{})

	got, err := svc.UpdateProfile(context.Background(), uuid.NewString(), "  Birta  ", PronounsSheHer, map[string]any{"lang": "is"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Birta" {
		t.Fatalf("name not trimmed: %q", got.Name)
	}
	if got.Pronouns != PronounsSheHer {
		t.Fatalf("pronouns mismatch: %q", got.Pronouns)
	}
}
