// Package httptransport is the thin HTTP layer over the shell. Handlers
// delegate to the state machine and flows without embedding gating logic;
// the route guard's decisions surface as renders or redirects.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vitrin/internal/audit"
	"vitrin/internal/identity"
	"vitrin/internal/jwtsession"
	"vitrin/internal/platform/metrics"
	"vitrin/internal/platform/middleware"
	"vitrin/internal/profile"
	"vitrin/internal/registration"
	"vitrin/internal/shell"
	"vitrin/pkg/httperr"
)

// HealthChecker reports whether a backing store connection is alive. nil
// means the configured store has no connection to check (in-memory).
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler bundles everything the routes need.
type Handler struct {
	logger       *slog.Logger
	metrics      *metrics.Metrics
	machine      *shell.Machine
	provider     identity.Provider
	registration *registration.Service
	profiles     profile.Store
	sessions     *jwtsession.Service
	audit        audit.Publisher
	health       HealthChecker
}

func NewHandler(
	logger *slog.Logger,
	m *metrics.Metrics,
	machine *shell.Machine,
	provider identity.Provider,
	reg *registration.Service,
	profiles profile.Store,
	sessions *jwtsession.Service,
	auditor audit.Publisher,
	health HealthChecker,
) *Handler {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Handler{
		logger:       logger,
		metrics:      m,
		machine:      machine,
		provider:     provider,
		registration: reg,
		profiles:     profiles,
		sessions:     sessions,
		audit:        auditor,
		health:       health,
	}
}

// NewRouter wires all routes. Page GETs run through the route guard; the
// mutation endpoints drive the registration and edit flows.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Session(sessionCookie, h.sessions, h.logger))

		r.Post("/auth/signin", h.handleSignIn)
		r.Post("/auth/signout", h.handleSignOut)

		r.Post("/register", h.handleRegisterSubmit)
		r.Put(shell.PathMyProfile, h.handleProfileUpdate)

		r.Get("/*", h.handlePage)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.health != nil {
		if err := h.health.Health(r.Context()); err != nil {
			h.logger.ErrorContext(r.Context(), "health check failed", "error", err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation so every handler returns
// the same JSON envelope.
func writeError(w http.ResponseWriter, err error) {
	var herr *httperr.Error
	if !httperr.As(err, &herr) {
		herr = httperr.New(httperr.CodeInternal, "internal error")
	}
	writeJSON(w, httperr.ToHTTPStatus(herr.Code), herr)
}
