package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/slodi/slodi/internal/authz"
	"github.com/slodi/slodi/internal/groups"
	"github.com/slodi/slodi/internal/observability"
	"github.com/slodi/slodi/internal/tags"
	"github.com/slodi/slodi/internal/users"
	"github.com/slodi/slodi/internal/workspaces"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Access            *authz.AccessControl
	UsersHandler      *users.Handler
	TagsHandler       *tags.Handler
	WorkspacesHandler *workspaces.Handler
	GroupsHandler     *groups.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router. Health and metrics stay public;
// everything else sits behind bearer authentication, with the user
// directory additionally gated on the platform admin permission.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(params.Access.Authenticate)

		params.UsersHandler.MountRoutes(r)
		r.Route("/tags", params.TagsHandler.MountRoutes)
		r.Route("/workspaces", params.WorkspacesHandler.MountRoutes)
		r.Route("/groups", params.GroupsHandler.MountRoutes)

		r.Route("/users", func(r chi.Router) {
			r.Use(params.Access.RequirePermission(users.PermissionAdmin))
			params.UsersHandler.MountAdminRoutes(r)
		})
	})

	return r
}
