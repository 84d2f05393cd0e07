// Package api provides the HTTP control plane of Deckhand.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/marofny/deckhand/internal/core/auth"
	"github.com/marofny/deckhand/internal/shell/api/middleware"
	"github.com/marofny/deckhand/internal/shell/apply"
	"github.com/marofny/deckhand/internal/shell/docker"
	"github.com/marofny/deckhand/internal/shell/store"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the control plane API.
type Handler struct {
	store   store.Store
	docker  docker.Client
	applier *apply.Applier
	logger  *slog.Logger
	network string
}

// NewHandler creates a new API handler. network is the overlay network the
// project's services join.
func NewHandler(s store.Store, d docker.Client, l *slog.Logger, network string) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		store:   s,
		docker:  d,
		applier: apply.NewApplier(d, s, l, network),
		logger:  l,
		network: network,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	// API v1 routes, token-authenticated
	authmw := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Tokens: h.store,
		Logger: h.logger,
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authmw.Handler)

		r.Get("/me", h.handleMe)

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", h.handlePlan)
			r.Post("/rollback", h.handleRollback)
		})

		r.Post("/deploys", h.handleApply)
		r.Post("/images", h.handleUploadImage)

		r.Route("/secrets", func(r chi.Router) {
			r.Get("/", h.handleListSecrets)
			r.Post("/", h.handleCreateSecret)
			r.Put("/", h.handleUpdateSecret)
			r.Get("/{key}", h.handleShowSecret)
			r.Delete("/{key}", h.handleDeleteSecret)
		})
	})

	return r
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := h.docker.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "docker unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// =============================================================================
// Identity
// =============================================================================

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, UserInfo{Name: user.Name, Role: string(user.Role)})
}
