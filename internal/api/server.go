// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

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

	"github.com/cardfolio/cardfolio/internal/platform/config"
	"github.com/cardfolio/cardfolio/internal/platform/constants"
	"github.com/cardfolio/cardfolio/internal/platform/middleware"
	"github.com/cardfolio/cardfolio/internal/platform/ratelimit"
	"github.com/cardfolio/cardfolio/internal/users/account"
	"github.com/cardfolio/cardfolio/internal/users/auth"
	"github.com/cardfolio/cardfolio/internal/wallet/giftcard"
	"github.com/cardfolio/cardfolio/internal/wallet/vendor"
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

	// Auth handles credential routes (register, token, refresh, logout).
	Auth *auth.Handler

	// Account handles user profile management under /users.
	Account *account.Handler

	// Vendor manages gift-card vendors and logos.
	Vendor *vendor.Handler

	// GiftCard manages the wallet's gift cards and card images.
	GiftCard *giftcard.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, limiter *ratelimit.SlidingWindow, resolver middleware.PrincipalResolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context, limiter))
	r.Use(middleware.ValidateRequest())
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(resolver))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API

	// Credential endpoints are reachable without a principal.
	r.Mount("/auth", h.Auth.Routes())

	// Everything below requires a valid access token.
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequirePrincipal)

		protected.Route("/users", func(users chi.Router) {
			// Per-user wallet listing lives under the users tree but is
			// served by the gift-card domain.
			users.Get("/{user_id}/gift-cards", h.GiftCard.ListUserCards)
			users.Mount("/", h.Account.Routes())
		})

		protected.Mount("/vendors", h.Vendor.Routes())
		protected.Mount("/gift-cards", h.GiftCard.Routes())
	})

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
