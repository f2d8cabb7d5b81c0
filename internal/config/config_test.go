package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_NAME", "APP_ENV", "SHUTDOWN_TIMEOUT",
	"PORT", "FRONTEND_URL", "WEB_PORT",
	"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP",
	"COMPRESSION_MIN_LENGTH", "COMPRESSION_LEVEL", "COMPRESSION_MAX_BODY",
	"DATABASE_URL", "REDIS_URL", "READINESS_TIMEOUT",
	"API_TLS_DOMAINS", "API_TLS_EMAIL", "API_TLS_CACHE_DIR", "API_TLS_HTTP_PORT",
	"WEB_TLS_DOMAINS", "WEB_TLS_EMAIL", "WEB_TLS_CACHE_DIR", "WEB_TLS_HTTP_PORT",
}

// clearEnv blanks every variable the loader reads so defaults apply
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

// TestLoadFromEnv tests loading configuration from the test env file
func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)

	env, err := godotenv.Read("../../.env.test")
	require.NoError(t, err, "Failed to read .env.test file")
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg := Default()
	err = cfg.LoadFromEnv()
	require.NoError(t, err)

	require.Equal(t, EnvTest, cfg.App.Environment)
	require.Equal(t, "3000", cfg.API.Port)
	require.Equal(t, "http://localhost:3001", cfg.API.FrontendURL)
	require.Equal(t, "3001", cfg.Web.Port)
	require.Equal(t, 1000, cfg.RateLimit.Requests)
	require.Equal(t, 60, cfg.RateLimit.Window)
	require.Equal(t, 50, cfg.RateLimit.Burst)
	require.Equal(t, "@every 10m", cfg.RateLimit.Cleanup)
	require.Equal(t, 2*time.Second, cfg.Dependencies.ReadinessTimeout)
	require.Equal(t, 5*time.Second, cfg.App.ShutdownTimeout)
	require.False(t, cfg.IsProduction())
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())

	require.Equal(t, "BiblioVault", cfg.App.Name)
	require.Equal(t, EnvDevelopment, cfg.App.Environment)
	require.Equal(t, "3000", cfg.API.Port)
	require.Equal(t, "http://localhost:3001", cfg.API.FrontendURL)
	require.Equal(t, "3001", cfg.Web.Port)
	require.Equal(t, 1024, cfg.Compression.MinLength)
	require.Equal(t, -1, cfg.Compression.Level)
	require.Empty(t, cfg.Dependencies.DatabaseURL)
	require.Empty(t, cfg.Dependencies.RedisURL)
	require.Equal(t, int64(1<<20), cfg.Compression.MaxBody)
	require.False(t, cfg.API.TLS.Enabled())
	require.False(t, cfg.Web.TLS.Enabled())
	require.Equal(t, "certs/api", cfg.API.TLS.CacheDir)
	require.Equal(t, "certs/web", cfg.Web.TLS.CacheDir)
	require.Equal(t, "80", cfg.API.TLS.HTTPPort)
	require.Equal(t, "http://localhost:3000", cfg.API.TLS.URL(cfg.API.Port))
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("FRONTEND_URL", "https://bibliovault.example")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")
	t.Setenv("API_TLS_DOMAINS", "api.bibliovault.example, www.bibliovault.example,")
	t.Setenv("COMPRESSION_MAX_BODY", "65536")
	t.Setenv("READINESS_TIMEOUT", "750ms")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())

	require.True(t, cfg.IsProduction())
	require.Equal(t, "8080", cfg.API.Port)
	require.Equal(t, "https://bibliovault.example", cfg.API.FrontendURL)
	require.Equal(t, 1000, cfg.RateLimit.Requests, "unparsable ints fall back to the default")
	require.Equal(t, []string{"api.bibliovault.example", "www.bibliovault.example"}, cfg.API.TLS.Domains)
	require.True(t, cfg.API.TLS.Enabled())
	require.False(t, cfg.Web.TLS.Enabled())
	require.Equal(t, "https://api.bibliovault.example:8080", cfg.API.TLS.URL(cfg.API.Port))
	require.Equal(t, int64(65536), cfg.Compression.MaxBody)
	require.Equal(t, 750*time.Millisecond, cfg.Dependencies.ReadinessTimeout)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non numeric port", key: "PORT", value: "http"},
		{name: "origin with path", key: "FRONTEND_URL", value: "http://localhost:3001/app"},
		{name: "unknown environment", key: "APP_ENV", value: "staging"},
		{name: "bad cleanup schedule", key: "RATE_LIMIT_CLEANUP", value: "sometimes"},
		{name: "bad tls email", key: "API_TLS_EMAIL", value: "not-an-email"},
		{name: "zero max body", key: "COMPRESSION_MAX_BODY", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg := Default()
			err := cfg.LoadFromEnv()
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadFromEnv_TLSChallengePortConflict(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_TLS_DOMAINS", "api.bibliovault.example")
	t.Setenv("WEB_TLS_DOMAINS", "bibliovault.example")

	cfg := Default()
	err := cfg.LoadFromEnv()
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorIs(t, err, ErrTLSPortConflict)

	t.Setenv("API_TLS_HTTP_PORT", "8080")
	cfg = Default()
	require.NoError(t, cfg.LoadFromEnv())
	require.Equal(t, "8080", cfg.API.TLS.HTTPPort)
	require.Equal(t, "80", cfg.Web.TLS.HTTPPort)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  environment: production
  shutdown_timeout: 10s
api:
  port: "4000"
  frontend_url: https://bibliovault.example
rate_limit:
  requests: 20
  window: 10
  burst: 5
  cleanup: "@hourly"
dependencies:
  redis_url: redis://localhost:6379/0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	t.Setenv("PORT", "5000")
	require.NoError(t, cfg.LoadFromEnv())

	require.Equal(t, EnvProduction, cfg.App.Environment)
	require.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	require.Equal(t, "5000", cfg.API.Port, "environment overrides the file")
	require.Equal(t, "https://bibliovault.example", cfg.API.FrontendURL)
	require.Equal(t, 20, cfg.RateLimit.Requests)
	require.Equal(t, 5, cfg.RateLimit.Burst)
	require.Equal(t, "@hourly", cfg.RateLimit.Cleanup)
	require.Equal(t, "redis://localhost:6379/0", cfg.Dependencies.RedisURL)
	require.Equal(t, "3001", cfg.Web.Port, "unset values keep their defaults")
}

func TestLoadFile_ZeroValuesOverrideDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rate_limit:
  burst: 0
compression:
  min_length: 0
  level: 0
web:
  tls:
    domains: [bibliovault.example]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))
	require.NoError(t, cfg.LoadFromEnv())

	require.Equal(t, 0, cfg.RateLimit.Burst)
	require.Equal(t, 0, cfg.Compression.MinLength)
	require.Equal(t, 0, cfg.Compression.Level)
	require.Equal(t, 1000, cfg.RateLimit.Requests, "keys missing from the file keep their defaults")
	require.Equal(t, []string{"bibliovault.example"}, cfg.Web.TLS.Domains)
	require.Equal(t, "certs/web", cfg.Web.TLS.CacheDir)
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o600))
	require.Error(t, cfg.LoadFile(path))
}
