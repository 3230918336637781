// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package api serves the accountd REST API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/accountd/accountd/internal/auth"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/user"
)

// SessionService authenticates logins and manages access tokens.
type SessionService interface {
	Login(ctx context.Context, email, password string) (auth.AccessToken, *auth.Credential, error)
	ResolveToken(ctx context.Context, token auth.AccessToken) (ulid.ULID, error)
	TokenTTL(ctx context.Context, token auth.AccessToken) (int64, error)
	DeleteToken(ctx context.Context, token auth.AccessToken) error
	TokenLifetime() time.Duration
}

// UserService registers, lists and deletes users.
type UserService interface {
	Register(ctx context.Context, in user.RegisterInput) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	Delete(ctx context.Context, id ulid.ULID) error
}

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	CheckDB(ctx context.Context) error
}

// Handler is the HTTP adapter over the session and user services.
type Handler struct {
	sessions SessionService
	users    UserService
	health   HealthChecker
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a Handler. metrics may be nil.
func NewHandler(
	sessions SessionService,
	users UserService,
	health HealthChecker,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions: sessions,
		users:    users,
		health:   health,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging, metrics and recovery middleware.
func NewServeMux(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/users", h.RegisterUser)
	mux.HandleFunc("GET /api/v1/users", h.ListUsers)
	mux.HandleFunc("DELETE /api/v1/users/{id}", h.DeleteUser)

	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/v1/auth/session", h.requireSession(h.Session))

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/health/db", h.HealthDB)

	// Recovery innermost so panics are caught before metrics and logging.
	wrapped := recoveryMiddleware(h.logger, mux)
	wrapped = metricsMiddleware(h.metrics, wrapped)
	wrapped = loggingMiddleware(h.logger, wrapped)

	return wrapped
}

// Health always reports ok while the process is serving.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
	})
}

// HealthDB reports whether the database answers a ping.
func (h *Handler) HealthDB(w http.ResponseWriter, r *http.Request) {
	if err := h.health.CheckDB(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "database health check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, HealthResponse{
			Status: "unavailable",
			Time:   h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
	})
}
