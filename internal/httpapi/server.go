// Package httpapi exposes the host over HTTP: health, status and the two
// announce endpoints that let external callers drive discovery.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hubd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Components() []string
	Status(ctx context.Context) types.StatusResponse
	Ready() bool
	Discover(ctx context.Context, req types.DiscoverRequest) (types.AnnounceResponse, error)
	LoadPlatform(ctx context.Context, req types.LoadPlatformRequest) (types.AnnounceResponse, error)
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status(r.Context()))
	})

	r.Get("/components", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ComponentsResponse{Components: nonNil(svc.Components())})
	})

	r.Post("/discover", func(w http.ResponseWriter, r *http.Request) {
		var req types.DiscoverRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Service) == "" {
			IncrementRejection("invalid_request")
			writeJSONError(w, http.StatusBadRequest, "service is required")
			return
		}
		announce(w, r, func(ctx context.Context) (types.AnnounceResponse, error) {
			return svc.Discover(ctx, req)
		})
	})

	r.Post("/platforms", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoadPlatformRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Component) == "" || strings.TrimSpace(req.Platform) == "" {
			IncrementRejection("invalid_request")
			writeJSONError(w, http.StatusBadRequest, "component and platform are required")
			return
		}
		announce(w, r, func(ctx context.Context) (types.AnnounceResponse, error) {
			return svc.LoadPlatform(ctx, req)
		})
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON checks the content type, limits the body and decodes it into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Oversized bodies also land here; report them as a plain bad request.
		IncrementRejection("invalid_request")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// announce runs fn with a context tied to the request and the server, then
// writes the response or the mapped error.
func announce(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) (types.AnnounceResponse, error)) {
	lvl := requestLogLevel(r)
	start := time.Now()
	ctx, cancel := requestContext(r)
	defer cancel()

	resp, err := fn(ctx)
	if err != nil {
		// Client went away: nothing left to answer.
		if r.Context().Err() != nil {
			return
		}
		status, reason := statusFor(err)
		if reason != "" {
			IncrementRejection(reason)
		}
		writeJSONError(w, status, err.Error())
		logAnnounce(r, lvl, status, start, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	logAnnounce(r, lvl, http.StatusOK, start, nil)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
