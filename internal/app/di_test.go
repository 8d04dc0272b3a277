package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/roleguard/internal/access/domain"
	accessRepository "github.com/allisson/roleguard/internal/access/repository"
	"github.com/allisson/roleguard/internal/config"
	"github.com/allisson/roleguard/internal/database"
	"github.com/allisson/roleguard/internal/identity"
	"github.com/allisson/roleguard/internal/metrics"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func newTestConfig() *config.Config {
	return &config.Config{
		ServerHost:                  "127.0.0.1",
		ServerPort:                  0,
		DBDriver:                    config.DriverMemory,
		LogLevel:                    "error",
		IdentityIssuer:              "roleguard-test",
		IdentitySigningKey:          testSigningKey,
		IdentityTokenTTL:            time.Hour,
		IdentityCodeTTL:             time.Minute,
		IdentityCodeStoreURL:        "mem://",
		TokenStoreURL:               "mem://",
		RateLimitAuthEnabled:        true,
		RateLimitAuthRequestsPerSec: 5,
		RateLimitAuthBurst:          10,
		MetricsEnabled:              false,
		MetricsNamespace:            "roleguard",
		MetricsPort:                 8081,
	}
}

func newTestContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	container := NewContainer(cfg)
	t.Cleanup(func() {
		_ = container.Shutdown(context.Background())
	})
	return container
}

func TestNewContainer(t *testing.T) {
	cfg := newTestConfig()
	container := newTestContainer(t, cfg)

	assert.Same(t, cfg, container.Config())
}

func TestContainer_Logger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		t.Run(level, func(t *testing.T) {
			cfg := newTestConfig()
			cfg.LogLevel = level
			container := newTestContainer(t, cfg)

			logger := container.Logger()
			require.NotNil(t, logger)
			assert.Same(t, logger, container.Logger())
		})
	}
}

func TestContainer_MemoryDriver(t *testing.T) {
	container := newTestContainer(t, newTestConfig())

	db, err := container.DB()
	require.NoError(t, err)
	assert.Nil(t, db)

	txManager, err := container.TxManager()
	require.NoError(t, err)
	assert.IsType(t, database.NewPassthroughTxManager(), txManager)

	subjectRepo, err := container.SubjectRepository()
	require.NoError(t, err)
	assert.IsType(t, &accessRepository.MemorySubjectRepository{}, subjectRepo)

	resourceRepo, err := container.ResourceRepository()
	require.NoError(t, err)
	assert.IsType(t, &accessRepository.MemoryResourceRepository{}, resourceRepo)
}

func TestContainer_InitializationErrorsAreSticky(t *testing.T) {
	cfg := newTestConfig()
	cfg.DBDriver = "invalid_driver"
	cfg.DBConnectionString = "whatever"
	container := newTestContainer(t, cfg)

	_, dbErr := container.DB()
	require.Error(t, dbErr)

	_, err := container.SubjectRepository()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get database for subject repository")

	// Errors are remembered; a second call does not retry.
	_, again := container.DB()
	assert.Same(t, dbErr, again)
}

func TestContainer_LocalProviderRequiresSigningKey(t *testing.T) {
	cfg := newTestConfig()
	cfg.IdentitySigningKey = ""
	container := newTestContainer(t, cfg)

	_, err := container.LocalProvider()
	require.ErrorIs(t, err, errSigningKeyMissing)

	_, err = container.HTTPServer()
	require.ErrorIs(t, err, errSigningKeyMissing)

	// The subject directory does not need the provider.
	subjects, err := container.SubjectUseCase()
	require.NoError(t, err)
	assert.NotNil(t, subjects)
}

func TestContainer_IdentityProvider(t *testing.T) {
	t.Run("local by default", func(t *testing.T) {
		container := newTestContainer(t, newTestConfig())

		provider, err := container.IdentityProvider()
		require.NoError(t, err)
		assert.IsType(t, &identity.LocalProvider{}, provider)
	})

	t.Run("remote when configured", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.IdentitySigningKey = ""
		cfg.IdentityRemoteURL = "https://id.example.com"
		container := newTestContainer(t, cfg)

		provider, err := container.IdentityProvider()
		require.NoError(t, err)
		assert.IsType(t, &identity.RemoteProvider{}, provider)

		manager, err := container.SessionManager()
		require.NoError(t, err)
		assert.Equal(t, domain.SessionLoggedOut, manager.State())
	})
}

func TestContainer_MetricsDisabled(t *testing.T) {
	container := newTestContainer(t, newTestConfig())

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	server, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, server)

	bm, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpBusinessMetrics{}, bm)

	dm, err := container.DecisionMetrics()
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpDecisionMetrics{}, dm)
}

func TestContainer_MetricsEnabled(t *testing.T) {
	cfg := newTestConfig()
	cfg.MetricsEnabled = true
	container := newTestContainer(t, cfg)

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	require.NotNil(t, provider)

	server, err := container.MetricsServer()
	require.NoError(t, err)
	assert.NotNil(t, server)

	engine, err := container.DecisionEngine()
	require.NoError(t, err)
	assert.NotNil(t, engine)
}

func TestContainer_HTTPServer(t *testing.T) {
	container := newTestContainer(t, newTestConfig())

	server, err := container.HTTPServer()
	require.NoError(t, err)

	again, err := container.HTTPServer()
	require.NoError(t, err)
	assert.Same(t, server, again)

	handler := server.GetHandler()
	require.NotNil(t, handler)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "in_memory")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContainer_CatalogSeedAndLogin(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t, newTestConfig())

	catalog, err := container.Catalog()
	require.NoError(t, err)
	require.NotEmpty(t, catalog.Subjects)

	seeder, err := container.CatalogSeeder()
	require.NoError(t, err)

	report, err := seeder.Seed(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, len(catalog.Subjects), report.SubjectsCreated)

	provider, err := container.LocalProvider()
	require.NoError(t, err)

	code, err := provider.Authorize(ctx, "admin@example.com", "admin12345")
	require.NoError(t, err)
	token, err := provider.ExchangeCodeForToken(ctx, code)
	require.NoError(t, err)

	manager, err := container.SessionManager()
	require.NoError(t, err)

	subject, err := manager.Start(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", subject.Email)
	assert.Equal(t, domain.SessionLoggedIn, manager.State())

	require.NoError(t, manager.End(ctx))
	assert.Equal(t, domain.SessionLoggedOut, manager.State())
}

func TestContainer_Shutdown(t *testing.T) {
	cfg := newTestConfig()
	cfg.MetricsEnabled = true
	container := NewContainer(cfg)

	_, err := container.HTTPServer()
	require.NoError(t, err)
	_, err = container.TokenStore()
	require.NoError(t, err)

	require.NoError(t, container.Shutdown(context.Background()))
	assert.Error(t, container.ctx.Err())
}

func TestBucketURLOrDefault(t *testing.T) {
	url, err := bucketURLOrDefault("mem://", func() (string, error) {
		t.Fatal("default directory must not be resolved")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "mem://", url)

	dir := filepath.Join(t.TempDir(), "roleguard", "identity")
	url, err = bucketURLOrDefault("", func() (string, error) { return dir, nil })
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(dir), url)
	assert.DirExists(t, dir)
}

func TestContainer_RevocationSharedThroughCodeStore(t *testing.T) {
	ctx := context.Background()
	codeStoreURL := "file://" + filepath.ToSlash(t.TempDir())

	cfg := newTestConfig()
	cfg.IdentityCodeStoreURL = codeStoreURL
	issuer := newTestContainer(t, cfg)

	catalog, err := issuer.Catalog()
	require.NoError(t, err)
	seeder, err := issuer.CatalogSeeder()
	require.NoError(t, err)
	_, err = seeder.Seed(ctx, catalog)
	require.NoError(t, err)

	provider, err := issuer.LocalProvider()
	require.NoError(t, err)

	login := func() string {
		code, err := provider.Authorize(ctx, "admin@example.com", "admin12345")
		require.NoError(t, err)
		token, err := provider.ExchangeCodeForToken(ctx, code)
		require.NoError(t, err)
		return token
	}
	revoked, kept := login(), login()
	require.NoError(t, provider.Revoke(ctx, revoked))

	other := newTestConfig()
	other.IdentityCodeStoreURL = codeStoreURL
	restarted, err := newTestContainer(t, other).LocalProvider()
	require.NoError(t, err)

	_, err = restarted.FetchSubject(ctx, revoked)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// The second memory driver holds no subjects, so a live token gets past
	// the revocation check and fails on lookup instead.
	_, err = restarted.FetchSubject(ctx, kept)
	assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
}
