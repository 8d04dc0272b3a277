package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/roleguard/internal/metrics"
)

// MetricsServer exposes /metrics on a port of its own.
type MetricsServer struct {
	listener
}

// NewMetricsServer builds the scrape endpoint. /metrics is only mounted when
// provider is non-nil; /health is always there.
func NewMetricsServer(host string, port int, logger *slog.Logger, provider *metrics.Provider) *MetricsServer {
	engine := gin.New()
	engine.Use(gin.Recovery(), CustomLoggerMiddleware(logger))
	engine.GET("/health", healthHandler)
	if provider != nil {
		engine.GET("/metrics", gin.WrapH(provider.Handler()))
	}

	l := newListener("metrics", host, port, logger)
	l.srv.Handler = engine
	return &MetricsServer{listener: l}
}

func (s *MetricsServer) GetHandler() http.Handler { return s.srv.Handler }

func (s *MetricsServer) Start(context.Context) error { return s.serve() }

func (s *MetricsServer) Shutdown(ctx context.Context) error { return s.stop(ctx) }
