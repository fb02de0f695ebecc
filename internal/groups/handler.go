package groups

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slodi/slodi/internal/platform/httpx"
	"github.com/slodi/slodi/internal/users"
)

// AccessChecker is the authorization surface the group handler needs.
type AccessChecker interface {
	CheckGroupAccess(ctx context.Context, groupID uuid.UUID, caller *users.User, minimum Role) error
}

// Handler wires group endpoints owned by the auth core.
type Handler struct {
	logger  *slog.Logger
	service *Service
	access  AccessChecker
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, access AccessChecker) *Handler {
	return &Handler{logger: logger, service: service, access: access}
}

// MountRoutes registers group routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{groupID}/membership", h.showMembership)
}

type membershipResponse struct {
	GroupID  uuid.UUID `json:"group_id"`
	Role     *Role     `json:"role"`
	IsMember bool      `json:"is_member"`
}

func (h *Handler) showMembership(w http.ResponseWriter, r *http.Request) {
	caller := users.IdentityFromContext(r.Context())
	if caller == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	groupID, err := uuid.Parse(chi.URLParam(r, "groupID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	if err := h.access.CheckGroupAccess(r.Context(), groupID, caller, RoleViewer); err != nil {
		httpx.RespondError(w, err)
		return
	}

	role, member, err := h.service.Membership(r.Context(), caller.ID, groupID)
	if err != nil {
		h.logger.Error("resolve group membership", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resp := membershipResponse{GroupID: groupID, IsMember: member}
	if member {
		resp.Role = &role
	}
	httpx.JSON(w, http.StatusOK, resp)
}
