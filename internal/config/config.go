// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"
)

// Supported DB_DRIVER values.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// minSigningKeyLength is the HS256 key floor, in bytes.
const minSigningKeyLength = 32

var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds all application configuration.
type Config struct {
	ServerHost string
	ServerPort int

	// DBDriver selects the subject and resource store: memory, postgres or mysql.
	DBDriver             string
	DBConnectionString   string
	DBMaxOpenConnections int
	DBMaxIdleConnections int
	DBConnMaxLifetime    time.Duration

	LogLevel string

	// CatalogPath is a YAML seed catalog. Empty means the embedded default.
	CatalogPath string
	// SeedCatalog seeds the catalog when the server starts.
	SeedCatalog bool

	// IdentityIssuer is the iss claim of locally issued tokens.
	IdentityIssuer string
	// IdentitySigningKey signs locally issued tokens (HS256).
	IdentitySigningKey string
	// IdentityTokenTTL is the token lifetime. Zero issues tokens that never expire.
	IdentityTokenTTL time.Duration
	// IdentityCodeTTL is the lifetime of one-time authorization codes.
	IdentityCodeTTL time.Duration
	// IdentityCodeStoreURL is a gocloud blob URL holding pending codes and
	// revoked token IDs. Empty means a directory under the user config dir.
	IdentityCodeStoreURL string
	// IdentityRemoteURL switches the CLI to a remote identity provider.
	IdentityRemoteURL string

	// TokenStoreURL is a gocloud blob URL for the CLI session token. Empty
	// means a directory under the user config dir.
	TokenStoreURL string
	// TokenStoreKeeperURI optionally encrypts the stored token (gocloud secrets URI).
	TokenStoreKeeperURI string

	// RateLimitAuthEnabled guards the unauthenticated authorize and token endpoints per client IP.
	RateLimitAuthEnabled        bool
	RateLimitAuthRequestsPerSec float64
	RateLimitAuthBurst          int

	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins.
	CORSAllowOrigins string

	MetricsEnabled   bool
	MetricsNamespace string
	MetricsPort      int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	loadDotEnv()

	return &Config{
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		DBDriver:             env.GetString("DB_DRIVER", DriverMemory),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		LogLevel: env.GetString("LOG_LEVEL", "info"),

		CatalogPath: env.GetString("CATALOG_PATH", ""),
		SeedCatalog: env.GetBool("SEED_CATALOG", true),

		IdentityIssuer:       env.GetString("IDENTITY_ISSUER", "roleguard"),
		IdentitySigningKey:   env.GetString("IDENTITY_SIGNING_KEY", ""),
		IdentityTokenTTL:     env.GetDuration("IDENTITY_TOKEN_TTL_SECONDS", 86400, time.Second),
		IdentityCodeTTL:      env.GetDuration("IDENTITY_CODE_TTL_SECONDS", 300, time.Second),
		IdentityCodeStoreURL: env.GetString("IDENTITY_CODE_STORE_URL", ""),
		IdentityRemoteURL:    env.GetString("IDENTITY_REMOTE_URL", ""),

		TokenStoreURL:       env.GetString("TOKEN_STORE_URL", ""),
		TokenStoreKeeperURI: env.GetString("TOKEN_STORE_KEEPER_URI", ""),

		RateLimitAuthEnabled:        env.GetBool("RATE_LIMIT_AUTH_ENABLED", true),
		RateLimitAuthRequestsPerSec: env.GetFloat64("RATE_LIMIT_AUTH_REQUESTS_PER_SEC", 5.0),
		RateLimitAuthBurst:          env.GetInt("RATE_LIMIT_AUTH_BURST", 10),

		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "roleguard"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	sqlBacked := c.DBDriver != DriverMemory
	localIdentity := c.IdentityRemoteURL == ""

	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DBDriver,
			validation.Required,
			validation.In(DriverMemory, DriverPostgres, DriverMySQL).Error("must be memory, postgres or mysql"),
		),
		validation.Field(&c.DBConnectionString, validation.Required.When(sqlBacked)),
		validation.Field(&c.LogLevel, validation.In(toAny(logLevels)...)),
		validation.Field(&c.IdentitySigningKey,
			validation.Required.When(localIdentity).Error("is required unless IDENTITY_REMOTE_URL is set"),
			validation.When(localIdentity, validation.Length(minSigningKeyLength, 0)),
		),
		validation.Field(&c.IdentityTokenTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.IdentityCodeTTL, validation.Required),
		validation.Field(&c.RateLimitAuthRequestsPerSec, validation.When(c.RateLimitAuthEnabled, validation.Min(0.0).Exclusive())),
		validation.Field(&c.RateLimitAuthBurst, validation.When(c.RateLimitAuthEnabled, validation.Min(1))),
		validation.Field(&c.MetricsPort, validation.When(c.MetricsEnabled, validation.Min(1), validation.Max(65535))),
	)
}

// GetGinMode returns "debug" for LOG_LEVEL=debug and "release" otherwise.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// DefaultTokenStoreDir is where the CLI keeps its session when TOKEN_STORE_URL is empty.
func DefaultTokenStoreDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "roleguard"), nil
}

// DefaultCodeStoreDir is where codes and revocations live when
// IDENTITY_CODE_STORE_URL is empty.
func DefaultCodeStoreDir() (string, error) {
	dir, err := DefaultTokenStoreDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "identity"), nil
}

func toAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// loadDotEnv walks from the working directory up to the root and loads the
// first .env file it finds.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
