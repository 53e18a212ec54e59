package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aescanero/alquimia/internal/application/campaign"
	"github.com/aescanero/alquimia/pkg/ports"
)

// Server represents the HTTP API server
type Server struct {
	router    *gin.Engine
	server    *http.Server
	store     ports.HandleStore
	monitor   *campaign.Monitor
	restarter *campaign.Restarter
	gatherer  *campaign.Gatherer
	logger    *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Port      int
	Store     ports.HandleStore
	Monitor   *campaign.Monitor
	Restarter *campaign.Restarter
	Gatherer  *campaign.Gatherer
	Logger    *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))

	s := &Server{
		router:    router,
		store:     cfg.Store,
		monitor:   cfg.Monitor,
		restarter: cfg.Restarter,
		gatherer:  cfg.Gatherer,
		logger:    cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/handles", s.handleListHandles)
		v1.GET("/handles/:id", s.handleGetHandle)
		v1.GET("/handles/:id/status", s.handleGetStatus)
		v1.GET("/handles/:id/report", s.handleGetReport)
		v1.POST("/handles/:id/restart", s.handleRestart)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
