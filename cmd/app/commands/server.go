package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/roleguard/internal/app"
	"github.com/allisson/roleguard/internal/config"
)

const shutdownTimeout = 15 * time.Second

// RunServer starts the API and metrics servers and blocks until SIGINT/SIGTERM
// or a server failure. The seed catalog is loaded first when SEED_CATALOG is set.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("db_driver", cfg.DBDriver),
	)
	defer closeContainer(container, logger)

	if cfg.SeedCatalog {
		if err := seedFromContainer(ctx, container); err != nil {
			return err
		}
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A server that fails cancels gctx, which brings the others down too.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx) })
	if metricsServer != nil {
		g.Go(func() error { return metricsServer.Start(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Any("cause", context.Cause(gctx)))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		errs := []error{server.Shutdown(shutdownCtx)}
		if metricsServer != nil {
			errs = append(errs, metricsServer.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func seedFromContainer(ctx context.Context, container *app.Container) error {
	catalog, err := container.Catalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	seeder, err := container.CatalogSeeder()
	if err != nil {
		return fmt.Errorf("failed to initialize catalog seeder: %w", err)
	}

	report, err := seeder.Seed(ctx, catalog)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	for _, warning := range report.Warnings {
		container.Logger().Warn("catalog warning",
			slog.String("code", string(warning.Code)),
			slog.String("value", warning.Value),
		)
	}
	return nil
}
