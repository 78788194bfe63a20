// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/minagawa/picboard/internal/admin"
	"github.com/minagawa/picboard/internal/feed"
	"github.com/minagawa/picboard/internal/image"
	"github.com/minagawa/picboard/internal/platform/config"
	"github.com/minagawa/picboard/internal/platform/constants"
	"github.com/minagawa/picboard/internal/platform/middleware"
	"github.com/minagawa/picboard/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the authentication lifecycle (register, login, logout).
	Auth *auth.Handler

	// Feed handles the board itself: pages, posts, comments.
	Feed *feed.Handler

	// Image serves stored image payloads.
	Image *image.Handler

	// Admin handles moderation and the environment reset.
	Admin *admin.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution. EnsureSession runs
	// after recovery so every handler below can rely on a session id.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.EnsureSession())
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// The board keeps its historical flat URL space: the feed lives at the
	// root, auxiliary surfaces under their own prefixes.
	r.Post("/initialize", h.Admin.Initialize)
	r.Mount("/admin", h.Admin.Routes())
	r.Mount("/image", h.Image.Routes())
	r.Mount("/", mergeRoutes(h.Auth, h.Feed))

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// mergeRoutes combines the auth and feed routers into one root-level router;
// both occupy the flat namespace without overlapping paths.
func mergeRoutes(authHandler *auth.Handler, feedHandler *feed.Handler) chi.Router {
	router := chi.NewRouter()
	authRoutes := authHandler.Routes()

	router.Method(http.MethodPost, "/register", authRoutes)
	router.Method(http.MethodPost, "/login", authRoutes)
	router.Method(http.MethodPost, "/logout", authRoutes)
	router.Mount("/", feedHandler.Routes())

	return router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
