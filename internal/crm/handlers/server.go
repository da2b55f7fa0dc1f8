package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gartstein/crm/internal/crm/auth"
	"go.uber.org/zap"
)

// Server wraps the HTTP server carrying the REST API.
type Server struct {
	httpServer   *http.Server
	logger       *zap.Logger
	httpEndpoint string
}

// NewServer constructs a Server listening on httpPort.
func NewServer(httpPort int, logger *zap.Logger) *Server {
	return &Server{
		httpServer:   &http.Server{},
		logger:       logger,
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
}

// RegisterHandler builds the route table from h and wraps it with the
// JWT middleware guarding mutating requests.
func (s *Server) RegisterHandler(h *Handler, jwtSecret string) {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	s.httpServer.Handler = auth.HTTPMiddleware(mux, jwtSecret)
	s.httpServer.Addr = s.httpEndpoint
}

// Start runs the HTTP server, blocking until it exits.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP serve error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Server stopped")
}
