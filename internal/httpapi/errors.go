package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"hubd/internal/discovery"
	"hubd/internal/loop"
	"hubd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps a service error onto a status code and a rejection reason
// for metrics. An empty reason means the error is not a client rejection.
func statusFor(err error) (int, string) {
	var he HTTPError
	switch {
	case discovery.IsForbiddenComponent(err):
		return http.StatusForbidden, "forbidden_component"
	case errors.Is(err, discovery.ErrConfigRequired), errors.Is(err, discovery.ErrComponentRequired):
		return http.StatusBadRequest, "precondition"
	case errors.Is(err, loop.ErrStopped):
		return http.StatusServiceUnavailable, "stopped"
	case errors.As(err, &he):
		return he.StatusCode(), ""
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusInternalServerError, "timeout"
	default:
		return http.StatusInternalServerError, ""
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}
