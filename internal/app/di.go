// Package app assembles the application components. Every component is built
// lazily on first access and shared afterwards.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	accessHTTP "github.com/allisson/roleguard/internal/access/http"
	"github.com/allisson/roleguard/internal/config"
	"github.com/allisson/roleguard/internal/database"
	"github.com/allisson/roleguard/internal/http"
	"github.com/allisson/roleguard/internal/metrics"
)

// Container holds all application dependencies.
type Container struct {
	config *config.Config

	// ctx scopes background goroutines (rate limiter cleanup). Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger
	db     *sql.DB

	txManager database.TxManager

	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	decisionMetrics metrics.DecisionMetrics

	httpServer    *http.Server
	metricsServer *http.MetricsServer

	access accessComponents

	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	decisionMetricsInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a container for cfg. Nothing is initialized yet.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger. Logs go to stderr so CLI output on stdout
// stays machine readable.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the SQL connection pool. The memory driver has none and gets nil.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		c.store("db", err)
		c.db = db
	})
	if err := c.stored("db"); err != nil {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns a SQL transaction manager, or a passthrough one for the memory driver.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		txManager, err := c.initTxManager()
		c.store("txManager", err)
		c.txManager = txManager
	})
	if err := c.stored("txManager"); err != nil {
		return nil, err
	}
	return c.txManager, nil
}

// MetricsProvider returns the Prometheus-backed provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		c.store("metricsProvider", err)
		c.metricsProvider = provider
	})
	if err := c.stored("metricsProvider"); err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the use case instruments, or a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		bm, err := c.initBusinessMetrics()
		c.store("businessMetrics", err)
		c.businessMetrics = bm
	})
	if err := c.stored("businessMetrics"); err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// DecisionMetrics returns the decision counter, or a no-op when metrics are disabled.
func (c *Container) DecisionMetrics() (metrics.DecisionMetrics, error) {
	c.decisionMetricsInit.Do(func() {
		dm, err := c.initDecisionMetrics()
		c.store("decisionMetrics", err)
		c.decisionMetrics = dm
	})
	if err := c.stored("decisionMetrics"); err != nil {
		return nil, err
	}
	return c.decisionMetrics, nil
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		c.store("httpServer", err)
		c.httpServer = server
	})
	if err := c.stored("httpServer"); err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		server, err := c.initMetricsServer()
		c.store("metricsServer", err)
		c.metricsServer = server
	})
	if err := c.stored("metricsServer"); err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown releases every initialized resource. Servers are stopped by their
// owner before calling it.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	var shutdownErrors []error

	if c.access.tokenStore != nil {
		if err := c.access.tokenStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("token store close: %w", err))
		}
	}

	if c.access.codeStore != nil {
		if err := c.access.codeStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("code store close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

func (c *Container) store(key string, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initErrors[key] = err
}

func (c *Container) stored(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[key]
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func (c *Container) initDB() (*sql.DB, error) {
	if c.config.DBDriver == config.DriverMemory {
		return nil, nil
	}

	db, err := database.Connect(c.ctx, database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	if db == nil {
		return database.NewPassthroughTxManager(), nil
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initDecisionMetrics() (metrics.DecisionMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpDecisionMetrics(), nil
	}
	return metrics.NewDecisionMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	routes, err := c.accessRoutes()
	if err != nil {
		return nil, fmt.Errorf("failed to build access routes: %w", err)
	}

	var pinger http.Pinger
	if db != nil {
		pinger = db
	}

	server := http.NewServer(pinger, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(http.RouterConfig{
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
		MetricsProvider:  provider,
		MetricsNamespace: c.config.MetricsNamespace,
	}, routes)

	return server, nil
}

func (c *Container) accessRoutes() (accessHTTP.Routes, error) {
	resolver, err := c.ServerSubjectResolver()
	if err != nil {
		return accessHTTP.Routes{}, err
	}
	resources, err := c.ResourceUseCase()
	if err != nil {
		return accessHTTP.Routes{}, err
	}
	subjects, err := c.SubjectUseCase()
	if err != nil {
		return accessHTTP.Routes{}, err
	}
	provider, err := c.LocalProvider()
	if err != nil {
		return accessHTTP.Routes{}, err
	}

	logger := c.Logger()
	routes := accessHTTP.Routes{
		Resolver:        resolver,
		Resources:       resources,
		AuthHandler:     accessHTTP.NewAuthHandler(provider, resolver, logger),
		SubjectHandler:  accessHTTP.NewSubjectHandler(subjects, logger),
		ResourceHandler: accessHTTP.NewResourceHandler(resources, logger),
		Logger:          logger,
	}
	if c.config.RateLimitAuthEnabled {
		routes.AuthRateLimit = accessHTTP.RateLimitMiddleware(
			c.ctx,
			c.config.RateLimitAuthRequestsPerSec,
			c.config.RateLimitAuthBurst,
			logger,
		)
	}

	return routes, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
