package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// listener wraps an *http.Server with the start/stop logging shared by the
// API and metrics servers.
type listener struct {
	name   string
	srv    *http.Server
	logger *slog.Logger
}

func newListener(name, host string, port int, logger *slog.Logger) listener {
	return listener{
		name:   name,
		logger: logger,
		srv: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       time.Minute,
		},
	}
}

func (l listener) serve() error {
	l.logger.Info("listening", slog.String("server", l.name), slog.String("addr", l.srv.Addr))

	err := l.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s server: %w", l.name, err)
	}
	return nil
}

func (l listener) stop(ctx context.Context) error {
	l.logger.Info("stopping", slog.String("server", l.name))
	return l.srv.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
