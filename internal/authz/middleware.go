package authz

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/slodi/slodi/internal/authn"
	"github.com/slodi/slodi/internal/platform/httpx"
	"github.com/slodi/slodi/internal/users"
)

// Authenticate extracts the bearer token, resolves the caller's identity
// and stores it on the request context. Verification failures map to 401;
// identity-provider outages map to 503 so clients can tell them apart.
func (a *AccessControl) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}

		user, err := a.ResolveIdentity(r.Context(), token)
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("authentication failed", slog.Any("error", err))
			}
			if authn.IsUpstreamFailure(err) {
				a.recordVerification("upstream_error")
				httpx.RespondError(w, httpx.ErrUpstreamUnavailable)
				return
			}
			a.recordVerification("rejected")
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}

		a.recordVerification("ok")
		next.ServeHTTP(w, r.WithContext(users.ContextWithIdentity(r.Context(), user)))
	})
}

// RequirePermission gates a route subtree on a minimum global permission.
// It assumes Authenticate already ran.
func (a *AccessControl) RequirePermission(minimum users.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := users.IdentityFromContext(r.Context())
			if caller == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if err := a.RequireGlobal(caller, minimum); err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *AccessControl) recordVerification(outcome string) {
	if a.metrics != nil {
		a.metrics.RecordTokenVerification(outcome)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
