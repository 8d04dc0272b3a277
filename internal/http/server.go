// Package http hosts the gin server: health probes, the ambient middleware
// chain and the access API mounted from internal/access/http.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessHTTP "github.com/allisson/roleguard/internal/access/http"
	"github.com/allisson/roleguard/internal/metrics"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB. A nil Pinger means the in-memory backend.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig carries the optional ambient middleware settings.
type RouterConfig struct {
	CORSEnabled      bool
	CORSAllowOrigins string
	// MetricsProvider enables request metrics when non-nil.
	MetricsProvider  *metrics.Provider
	MetricsNamespace string
}

// Server is the API server.
type Server struct {
	listener
	db     Pinger
	router *gin.Engine
}

// NewServer creates a server listening on host:port. Call SetupRouter before Start.
func NewServer(db Pinger, host string, port int, logger *slog.Logger) *Server {
	return &Server{db: db, listener: newListener("api", host, port, logger)}
}

// SetupRouter builds the gin engine: recovery, request IDs, access logging,
// CORS and metrics, then the probes and the /v1 API.
func (s *Server) SetupRouter(cfg RouterConfig, routes accessHTTP.Routes) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", healthHandler)
	router.GET("/ready", s.readinessHandler)

	if routes.Logger == nil {
		routes.Logger = s.logger
	}
	accessHTTP.RegisterRoutes(router, routes)

	s.router = router
}

// GetHandler returns the configured handler, or nil before SetupRouter.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(context.Context) error {
	if s.router == nil {
		return errors.New("router not configured")
	}
	s.srv.Handler = s.router
	return s.serve()
}

func (s *Server) Shutdown(ctx context.Context) error { return s.stop(ctx) }

// readinessHandler reports ready when the database answers a ping. The
// in-memory backend is always ready.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"components": gin.H{"database": "in_memory"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
