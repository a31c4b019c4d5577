// Package api provides the HTTP API for sqlbench: assessment submission and
// status, reference schema inspection, health, and the WebSocket progress
// stream.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/database"
	"github.com/codeready-toolchain/sqlbench/pkg/events"
	"github.com/codeready-toolchain/sqlbench/pkg/executor"
	"github.com/codeready-toolchain/sqlbench/pkg/services"
	"github.com/codeready-toolchain/sqlbench/pkg/version"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg               config.ServerConfig
	catalog           *config.Catalog
	dbClient          *database.Client
	adapter           *executor.Adapter
	assessmentService *services.AssessmentService
	connManager       *events.ConnectionManager

	logger *slog.Logger
}

// NewServer creates a new API server with Echo v5.
func NewServer(
	cfg config.ServerConfig,
	catalog *config.Catalog,
	dbClient *database.Client,
	adapter *executor.Adapter,
	assessmentService *services.AssessmentService,
	connManager *events.ConnectionManager,
) *Server {
	e := echo.New()

	s := &Server{
		echo:              e,
		cfg:               cfg,
		catalog:           catalog,
		dbClient:          dbClient,
		adapter:           adapter,
		assessmentService: assessmentService,
		connManager:       connManager,
		logger:            slog.Default().With("component", "api-server"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	// Assessment requests carry participant maps and config only; a small
	// body limit rejects oversized payloads before deserialization.
	s.echo.Use(middleware.BodyLimit(1 * 1024 * 1024))

	s.echo.GET("/health", s.healthHandler)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/assessments", s.submitAssessmentHandler)
	v1.GET("/assessments/:id", s.getAssessmentHandler)
	v1.POST("/assessments/:id/cancel", s.cancelAssessmentHandler)
	v1.GET("/schema", s.schemaHandler)

	// WebSocket endpoint for real-time progress streaming.
	v1.GET("/ws", s.wsHandler)
}

// Start begins serving on the given address. Blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("HTTP server listening", "addr", addr, "version", version.Version)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
