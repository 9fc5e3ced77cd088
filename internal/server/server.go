package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/valeo/internal/app"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
)

// Server wires the application's handlers into an http.Server
type Server struct {
	app    *app.App
	addr   string
	server *http.Server
}

// New creates a new HTTP server for the given app
func New(application *app.App) *Server {
	s := &Server{
		app:  application,
		addr: fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port),
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.withMiddleware(s.setupRoutes()),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s
}

// Start starts the HTTP server and blocks until it is shut down
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.addr).
		Str("health", fmt.Sprintf("http://%s/api/health", s.addr)).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
