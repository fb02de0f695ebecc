package workspaces

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slodi/slodi/internal/platform/httpx"
	"github.com/slodi/slodi/internal/users"
)

// AccessChecker is the authorization surface the workspace handler needs.
type AccessChecker interface {
	CheckWorkspaceAccess(ctx context.Context, workspaceID uuid.UUID, caller *users.User, minimum Role, hideFromNonMembers bool) error
	WorkspaceRole(ctx context.Context, caller *users.User, workspaceID uuid.UUID) (Role, bool, error)
}

// Handler wires workspace endpoints owned by the auth core.
type Handler struct {
	logger  *slog.Logger
	service *Service
	access  AccessChecker
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, access AccessChecker) *Handler {
	return &Handler{logger: logger, service: service, access: access}
}

// MountRoutes registers workspace routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{workspaceID}/membership", h.showMembership)
	r.Delete("/{workspaceID}", h.deleteWorkspace)
}

type membershipResponse struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Role        *Role     `json:"role"`
	IsMember    bool      `json:"is_member"`
}

func (h *Handler) showMembership(w http.ResponseWriter, r *http.Request) {
	caller := users.IdentityFromContext(r.Context())
	if caller == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	// Non-members must not learn the workspace exists.
	if err := h.access.CheckWorkspaceAccess(r.Context(), workspaceID, caller, RoleViewer, true); err != nil {
		httpx.RespondError(w, err)
		return
	}

	role, member, err := h.access.WorkspaceRole(r.Context(), caller, workspaceID)
	if err != nil {
		h.logger.Error("resolve membership", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resp := membershipResponse{WorkspaceID: workspaceID, IsMember: member}
	if member {
		resp.Role = &role
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	caller := users.IdentityFromContext(r.Context())
	if caller == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	if err := h.access.CheckWorkspaceAccess(r.Context(), workspaceID, caller, RoleOwner, true); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), workspaceID); err != nil {
		h.logger.Error("delete workspace", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
