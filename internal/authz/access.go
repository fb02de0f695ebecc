// Package authz decides who is calling and whether they are allowed.
// It composes the token verifier and the lookup caches into the
// dependency-injected guards the HTTP layer uses.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/slodi/slodi/internal/authn"
	"github.com/slodi/slodi/internal/groups"
	"github.com/slodi/slodi/internal/lookup"
	"github.com/slodi/slodi/internal/platform/httpx"
	"github.com/slodi/slodi/internal/users"
	"github.com/slodi/slodi/internal/workspaces"
)

// ErrEmailUnavailable indicates first-login provisioning could not obtain
// an email from either the token claims or the userinfo endpoint; without
// an email the identity cannot be established.
var ErrEmailUnavailable = errors.New("authz: email unavailable")

// TokenVerifier converts a bearer token into verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*authn.Claims, error)
}

// ProfileFetcher retrieves the caller's profile from the identity provider.
type ProfileFetcher interface {
	Fetch(ctx context.Context, accessToken string) (*authn.Profile, error)
}

// UserStore is the authoritative source and sink for user accounts.
type UserStore interface {
	FindByAuth0ID(ctx context.Context, auth0ID string) (*users.User, error)
	Provision(ctx context.Context, nu users.NewUser) (*users.User, error)
}

// WorkspaceMembershipSource is the authoritative source for workspace roles.
type WorkspaceMembershipSource interface {
	Membership(ctx context.Context, userID, workspaceID uuid.UUID) (workspaces.Role, bool, error)
}

// GroupMembershipSource is the authoritative source for group roles.
type GroupMembershipSource interface {
	Membership(ctx context.Context, userID, groupID uuid.UUID) (groups.Role, bool, error)
}

// VerificationRecorder counts verification outcomes for observability.
type VerificationRecorder interface {
	RecordTokenVerification(outcome string)
}

// AccessControl resolves identities and enforces role requirements.
type AccessControl struct {
	logger           *slog.Logger
	verifier         TokenVerifier
	profiles         ProfileFetcher
	users            UserStore
	workspaceMembers WorkspaceMembershipSource
	groupMembers     GroupMembershipSource
	userCache        *lookup.UserCache
	membershipCache  *lookup.MembershipCache
	metrics          VerificationRecorder
}

// Config collects the collaborators of AccessControl.
type Config struct {
	Logger           *slog.Logger
	Verifier         TokenVerifier
	Profiles         ProfileFetcher
	Users            UserStore
	WorkspaceMembers WorkspaceMembershipSource
	GroupMembers     GroupMembershipSource
	UserCache        *lookup.UserCache
	MembershipCache  *lookup.MembershipCache
	Metrics          VerificationRecorder
}

// New constructs an AccessControl.
func New(cfg Config) *AccessControl {
	return &AccessControl{
		logger:           cfg.Logger,
		verifier:         cfg.Verifier,
		profiles:         cfg.Profiles,
		users:            cfg.Users,
		workspaceMembers: cfg.WorkspaceMembers,
		groupMembers:     cfg.GroupMembers,
		userCache:        cfg.UserCache,
		membershipCache:  cfg.MembershipCache,
		metrics:          cfg.Metrics,
	}
}

// ResolveIdentity verifies the token and returns the caller's account,
// provisioning it on first login. The user cache answers repeat callers
// without touching the store.
func (a *AccessControl) ResolveIdentity(ctx context.Context, token string) (*users.User, error) {
	claims, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if a.userCache != nil {
		if user, ok := a.userCache.Get(ctx, claims.Subject); ok {
			return user, nil
		}
	}

	user, err := a.users.FindByAuth0ID(ctx, claims.Subject)
	if err == nil {
		a.cacheUser(ctx, claims.Subject, user)
		return user, nil
	}
	if !errors.Is(err, httpx.ErrNotFound) {
		return nil, err
	}

	// First login. Tokens from the provider frequently omit the email
	// claim; the userinfo endpoint is the fallback.
	email, name := claims.Email, claims.Name
	if email == "" {
		profile, err := a.profiles.Fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		email = profile.Email
		if name == "" {
			name = profile.Name
		}
	}
	if email == "" {
		return nil, ErrEmailUnavailable
	}

	user, err = a.users.Provision(ctx, users.NewUser{
		Auth0ID: claims.Subject,
		Email:   email,
		Name:    name,
	})
	if err != nil {
		return nil, err
	}
	if a.logger != nil {
		a.logger.Info("provisioned user on first login", slog.String("auth0_id", claims.Subject))
	}
	a.cacheUser(ctx, claims.Subject, user)
	return user, nil
}

func (a *AccessControl) cacheUser(ctx context.Context, auth0ID string, user *users.User) {
	if a.userCache != nil {
		a.userCache.Set(ctx, auth0ID, user)
	}
}

// RequireGlobal denies callers whose global permission ranks below minimum.
func (a *AccessControl) RequireGlobal(caller *users.User, minimum users.Permission) error {
	if !caller.Permission.AtLeast(minimum) {
		return fmt.Errorf("%w: requires %q permission or higher", httpx.ErrForbidden, minimum)
	}
	return nil
}

// WorkspaceRole resolves the caller's role in a workspace, cache first.
// Both positive and confirmed-negative answers are cached.
func (a *AccessControl) WorkspaceRole(ctx context.Context, caller *users.User, workspaceID uuid.UUID) (workspaces.Role, bool, error) {
	if a.membershipCache != nil {
		switch res := a.membershipCache.Get(ctx, caller.ID, workspaceID); res.State {
		case lookup.MembershipMember:
			return res.Role, true, nil
		case lookup.MembershipNonMember:
			return "", false, nil
		}
	}

	role, member, err := a.workspaceMembers.Membership(ctx, caller.ID, workspaceID)
	if err != nil {
		return "", false, err
	}
	if a.membershipCache != nil {
		if member {
			a.membershipCache.Set(ctx, caller.ID, workspaceID, &role)
		} else {
			a.membershipCache.Set(ctx, caller.ID, workspaceID, nil)
		}
	}
	return role, member, nil
}

// CheckWorkspaceAccess denies callers below minimum in the workspace.
// Platform admins bypass the check entirely. Non-members receive
// ErrNotFound instead of ErrForbidden when hideFromNonMembers is set, so
// the resource's existence is not confirmed to outsiders.
func (a *AccessControl) CheckWorkspaceAccess(ctx context.Context, workspaceID uuid.UUID, caller *users.User, minimum workspaces.Role, hideFromNonMembers bool) error {
	if caller.Permission == users.PermissionAdmin {
		return nil
	}

	role, member, err := a.WorkspaceRole(ctx, caller, workspaceID)
	if err != nil {
		return err
	}
	if !member {
		if hideFromNonMembers {
			return httpx.ErrNotFound
		}
		return fmt.Errorf("%w: not a workspace member", httpx.ErrForbidden)
	}
	if !role.AtLeast(minimum) {
		return fmt.Errorf("%w: requires %s role", httpx.ErrForbidden, minimum)
	}
	return nil
}

// CheckProgramEditAccess decides whether the caller may edit a program.
// Allowed for platform admins, workspace admins and above, and for the
// program's author holding at least the editor role. Authorship with an
// editor role is a privilege distinct from pure role rank: it applies
// only to the specific author of the specific resource.
func (a *AccessControl) CheckProgramEditAccess(ctx context.Context, workspaceID, authorID uuid.UUID, caller *users.User) error {
	if caller.Permission == users.PermissionAdmin {
		return nil
	}

	role, member, err := a.WorkspaceRole(ctx, caller, workspaceID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: not a workspace member", httpx.ErrForbidden)
	}
	if role.AtLeast(workspaces.RoleAdmin) {
		return nil
	}
	if caller.ID == authorID && role.AtLeast(workspaces.RoleEditor) {
		return nil
	}
	return fmt.Errorf("%w: requires workspace admin or program authorship", httpx.ErrForbidden)
}

// CheckGroupAccess denies callers below minimum in the group. Platform
// admins bypass. Group membership is looked up directly, without a cache.
func (a *AccessControl) CheckGroupAccess(ctx context.Context, groupID uuid.UUID, caller *users.User, minimum groups.Role) error {
	if caller.Permission == users.PermissionAdmin {
		return nil
	}

	role, member, err := a.groupMembers.Membership(ctx, caller.ID, groupID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: not a group member", httpx.ErrForbidden)
	}
	if !role.AtLeast(minimum) {
		return fmt.Errorf("%w: requires %s role", httpx.ErrForbidden, minimum)
	}
	return nil
}
