package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slodi/slodi/internal/authn"
	"github.com/slodi/slodi/internal/authz"
	"github.com/slodi/slodi/internal/groups"
	"github.com/slodi/slodi/internal/observability"
	"github.com/slodi/slodi/internal/tags"
	"github.com/slodi/slodi/internal/users"
	"github.com/slodi/slodi/internal/workspaces"
)

type stubVerifier struct {
	subject string
}

func (s *stubVerifier) Verify(context.Context, string) (*authn.Claims, error) {
	if s.subject == "" {
		return nil, authn.ErrSignatureInvalid
	}
	return &authn.Claims{
		Subject:   s.subject,
		Issuer:    "https://slodi-test.example.com/",
		Audience:  []string{"https://api.slodi.test"},
		ExpiresAt: time.Now().Add(time.Hour),
		IssuedAt:  time.Now(),
	}, nil
}

type stubUserStore struct {
	user *users.User
}

func (s *stubUserStore) FindByAuth0ID(context.Context, string) (*users.User, error) {
	return s.user, nil
}

func (s *stubUserStore) Provision(context.Context, users.NewUser) (*users.User, error) {
	return s.user, nil
}

type stubTagRepo struct{}

func (stubTagRepo) List(context.Context) ([]tags.Tag, error) { return nil, nil }

type stubWorkspaceRepo struct{}

func (stubWorkspaceRepo) FindMembership(context.Context, uuid.UUID, uuid.UUID) (workspaces.Role, bool, error) {
	return "", false, nil
}
func (stubWorkspaceRepo) Find(context.Context, uuid.UUID) (*workspaces.Workspace, error) {
	return nil, nil
}
func (stubWorkspaceRepo) SoftDelete(context.Context, uuid.UUID) error { return nil }

type stubGroupRepo struct{}

func (stubGroupRepo) FindMembership(context.Context, uuid.UUID, uuid.UUID) (groups.Role, bool, error) {
	return "", false, nil
}

func newTestRouter(t *testing.T, verifier authz.TokenVerifier, user *users.User) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second}

	userService := users.NewService(nil)
	workspaceService := workspaces.NewService(logger, stubWorkspaceRepo{}, nil, nil)
	groupService := groups.NewService(stubGroupRepo{})
	tagService := tags.NewService(stubTagRepo{}, nil)

	access := authz.New(authz.Config{
		Logger:           logger,
		Verifier:         verifier,
		Users:            &stubUserStore{user: user},
		WorkspaceMembers: workspaceService,
		GroupMembers:     groupService,
	})

	return NewRouter(RouterParams{
		Logger:            logger,
		Config:            cfg,
		Access:            access,
		UsersHandler:      users.NewHandler(logger, userService),
		TagsHandler:       tags.NewHandler(logger, tagService),
		WorkspacesHandler: workspaces.NewHandler(logger, workspaceService, access),
		GroupsHandler:     groups.NewHandler(logger, groupService, access),
		Metrics:           observability.NewMetrics(),
	})
}

func TestHealthzIsPublic(t *testing.T) {
	router := newTestRouter(t, &stubVerifier{}, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestMetricsIsPublic(t *testing.T) {
	router := newTestRouter(t, &stubVerifier{}, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, &stubVerifier{}, nil)

	for _, target := range []string{"/me", "/tags", "/users"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, resp.Code)
		}
	}
}

func TestAuthenticatedRequestPassesThrough(t *testing.T) {
	user := &users.User{ID: uuid.New(), Auth0ID: "auth0|edda", Email: "edda@slodi.is", Permission: users.PermissionMember}
	router := newTestRouter(t, &stubVerifier{subject: "auth0|edda"}, user)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUserDirectoryRequiresAdmin(t *testing.T) {
	user := &users.User{ID: uuid.New(), Auth0ID: "auth0|member", Permission: users.PermissionMember}
	router := newTestRouter(t, &stubVerifier{subject: "auth0|member"}, user)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}
