// Package server provides the HTTP API: the assistant chat endpoint, CRUD
// routes for the firm's records, health and Prometheus metrics.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexfirm/lex/internal/assistant"
	"github.com/lexfirm/lex/internal/store"
)

// Server is the HTTP server with lifecycle management.
type Server struct {
	assistant   *assistant.Assistant
	store       store.Store
	chatTimeout time.Duration
	httpServer  *http.Server
	logger      *slog.Logger
}

// New creates the server and registers all routes.
func New(addr string, a *assistant.Assistant, s store.Store, chatTimeout time.Duration, logger *slog.Logger) *Server {
	srv := &Server{
		assistant:   a,
		store:       s,
		chatTimeout: chatTimeout,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ai/chat", srv.handleChat)

	mux.HandleFunc("GET /api/clients", srv.handleListClients)
	mux.HandleFunc("POST /api/clients", srv.handleCreateClient)
	mux.HandleFunc("GET /api/clients/{id}", srv.handleGetClient)
	mux.HandleFunc("PUT /api/clients/{id}", srv.handleUpdateClient)
	mux.HandleFunc("DELETE /api/clients/{id}", srv.handleDeleteClient)

	mux.HandleFunc("GET /api/cases", srv.handleListCases)
	mux.HandleFunc("POST /api/cases", srv.handleCreateCase)
	mux.HandleFunc("GET /api/cases/{id}", srv.handleGetCase)
	mux.HandleFunc("PUT /api/cases/{id}", srv.handleUpdateCase)
	mux.HandleFunc("DELETE /api/cases/{id}", srv.handleDeleteCase)

	mux.HandleFunc("GET /api/tasks", srv.handleListTasks)
	mux.HandleFunc("POST /api/tasks", srv.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", srv.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", srv.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", srv.handleDeleteTask)

	mux.HandleFunc("GET /api/team", srv.handleListTeam)
	mux.HandleFunc("GET /api/team/{id}", srv.handleGetTeamMember)

	mux.HandleFunc("GET /api/dashboard", srv.handleDashboard)

	mux.HandleFunc("GET /health", srv.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv.httpServer = &http.Server{
		Addr:        addr,
		Handler:     withLogging(logger, mux),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return srv
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
