package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/slodi/slodi/internal/platform/httpx"
)

// Handler wires HTTP endpoints for account introspection and profile updates.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.showMe)
	r.Patch("/me", h.updateMe)
}

// MountAdminRoutes registers routes restricted to platform admins.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
}

type updateProfileRequest struct {
	Name        string         `json:"name" validate:"required,min=2,max=120"`
	Pronouns    string         `json:"pronouns" validate:"omitempty,oneof=she/her he/him they/them other 'prefer not to say'"`
	Preferences map[string]any `json:"preferences"`
}

func (h *Handler) showMe(w http.ResponseWriter, r *http.Request) {
	user := IdentityFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	user := IdentityFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID.String(), req.Name, Pronouns(req.Pronouns), req.Preferences)
	if err != nil {
		h.logger.Error("update profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}
