package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across the domain layer.
var (
	// ErrNotFound indicates the resource does not exist, or that its
	// existence is deliberately hidden from the caller.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates a structurally invalid request payload.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates the caller is known but lacks privilege.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates the caller's identity could not be established.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUpstreamUnavailable indicates a dependency (identity provider)
	// failed; retrying later may succeed, unlike a bad token.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
	case errors.Is(err, ErrUpstreamUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Upstream Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
