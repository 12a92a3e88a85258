// Package core provides the HTTP chassis for the planrelay service. It
// creates a chi router and enforces cross-cutting concerns -- panic recovery,
// request timeouts, correlation IDs, and structured request logging -- before
// requests reach the webhook handler.
package core

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"planrelay/internal/config"
)

// defaultRequestTimeout is the soft deadline applied to request contexts when
// the configuration does not specify one.
const defaultRequestTimeout = 29 * time.Second

// RouteRegistrar mounts a group of handler routes onto the router. The
// indirection keeps core free of handler imports and lets tests mount fakes.
type RouteRegistrar func(r chi.Router)

// Server encapsulates the router and the cross-cutting dependencies, allowing
// for easy injection during testing.
type Server struct {
	Config *config.Config
	Logger *slog.Logger

	// Registrars are mounted under the router root by MountRoutes.
	Registrars []RouteRegistrar

	router *chi.Mux
}

// NewServer performs fail-fast checks on critical dependencies and prepares
// the router. The caller mounts routes via MountRoutes after construction;
// the separation lets tests customize route registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// MountRoutes registers the global middleware chain, the health endpoint, and
// every configured route registrar.
//
// Middleware ordering:
//  1. Recoverer       - outermost, catches all panics.
//  2. ContextTimeout  - soft deadline before the server's write timeout.
//  3. RequestID       - correlation ID for tracing.
//  4. RequestLogger   - structured logging (secrets redacted).
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger))

	s.router.Get("/health", s.HandleHealth)

	for _, registrar := range s.Registrars {
		registrar(s.router)
	}
}

// requestTimeout returns the configured request timeout, falling back to the
// default when unset.
func (s *Server) requestTimeout() time.Duration {
	if s.Config != nil && s.Config.Server.RequestTimeout > 0 {
		return s.Config.Server.RequestTimeout
	}
	return defaultRequestTimeout
}
