// Package config loads the startup configuration shared by the API and web processes
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bibliovault/internal/validation"

	"gopkg.in/yaml.v2"
)

// Environment names accepted in APP_ENV
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// ErrInvalidConfig is returned when the loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrTLSPortConflict is returned when both processes would bind the same ACME challenge port
var ErrTLSPortConflict = errors.New("api and web tls share the same challenge port")

// Config represents the application configuration
type Config struct {
	// App contains process-wide settings
	App AppConfig `yaml:"app"`
	// API contains API server configuration
	API APIConfig `yaml:"api"`
	// Web contains landing page server configuration
	Web WebConfig `yaml:"web"`
	// RateLimit contains rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	// Compression contains gzip configuration
	Compression CompressionConfig `yaml:"compression"`
	// Dependencies lists the optional services checked by the readiness endpoint
	Dependencies DependencyConfig `yaml:"dependencies"`
}

// AppConfig contains process-wide settings
type AppConfig struct {
	// Name is the product name used in messages and page titles
	Name string `yaml:"name" validate:"required"`
	// Environment is one of development, test or production
	Environment string `yaml:"environment" validate:"required,oneof=development test production"`
	// ShutdownTimeout bounds graceful shutdown of an HTTP server
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// APIConfig contains API server settings
type APIConfig struct {
	// Port is the server port to listen on
	Port string `yaml:"port" validate:"required,numeric"`
	// FrontendURL is the only origin allowed to make cross-origin requests
	FrontendURL string `yaml:"frontend_url" validate:"required,origin"`
	// TLS contains automatic HTTPS settings for the API process
	TLS TLSConfig `yaml:"tls"`
}

// WebConfig contains landing page server settings
type WebConfig struct {
	// Port is the server port to listen on
	Port string `yaml:"port" validate:"required,numeric"`
	// TLS contains automatic HTTPS settings for the web process
	TLS TLSConfig `yaml:"tls"`
}

// RateLimitConfig contains per-client rate limiting settings
type RateLimitConfig struct {
	// Requests is the number of requests allowed per window
	Requests int `yaml:"requests" validate:"gt=0"`
	// Window is the time window in seconds
	Window int `yaml:"window" validate:"gt=0"`
	// Burst is the maximum burst size
	Burst int `yaml:"burst" validate:"gte=0"`
	// Cleanup is the cron schedule for sweeping idle client buckets
	Cleanup string `yaml:"cleanup" validate:"required,cronspec"`
}

// CompressionConfig contains gzip settings
type CompressionConfig struct {
	// MinLength is the minimum body size that gets compressed
	MinLength int `yaml:"min_length" validate:"gte=0"`
	// Level is the gzip level, -1 for the library default
	Level int `yaml:"level" validate:"gte=-2,lte=9"`
	// MaxBody caps a gzip request body, both as sent and once inflated
	MaxBody int64 `yaml:"max_body" validate:"gt=0"`
}

// DependencyConfig contains the optional backing services
type DependencyConfig struct {
	// DatabaseURL is a postgres connection URL, empty to disable the check
	DatabaseURL string `yaml:"database_url"`
	// RedisURL is a redis connection URL, empty to disable the check
	RedisURL string `yaml:"redis_url"`
	// ReadinessTimeout bounds a single readiness probe
	ReadinessTimeout time.Duration `yaml:"readiness_timeout" validate:"gt=0"`
}

// TLSConfig contains automatic HTTPS settings for one process
type TLSConfig struct {
	// Domains enables autocert for the listed host names
	Domains []string `yaml:"domains"`
	// Email is the ACME account contact
	Email string `yaml:"email" validate:"omitempty,email"`
	// CacheDir stores issued certificates
	CacheDir string `yaml:"cache_dir" validate:"required"`
	// HTTPPort serves ACME HTTP-01 challenges
	HTTPPort string `yaml:"http_port" validate:"required,numeric"`
}

// Enabled reports whether automatic HTTPS is configured
func (t TLSConfig) Enabled() bool {
	return len(t.Domains) > 0
}

// URL returns the base address a process listening on port is reachable at
func (t TLSConfig) URL(port string) string {
	if t.Enabled() {
		return fmt.Sprintf("https://%s:%s", t.Domains[0], port)
	}
	return fmt.Sprintf("http://localhost:%s", port)
}

// Default returns the built-in configuration. LoadFile and LoadFromEnv layer on top of it.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:            "BiblioVault",
			Environment:     EnvDevelopment,
			ShutdownTimeout: 5 * time.Second,
		},
		API: APIConfig{
			Port:        "3000",
			FrontendURL: "http://localhost:3001",
			TLS:         TLSConfig{CacheDir: "certs/api", HTTPPort: "80"},
		},
		Web: WebConfig{
			Port: "3001",
			TLS:  TLSConfig{CacheDir: "certs/web", HTTPPort: "80"},
		},
		RateLimit: RateLimitConfig{
			Requests: 1000,
			Window:   60,
			Burst:    50,
			Cleanup:  "@every 10m",
		},
		Compression: CompressionConfig{
			MinLength: 1024,
			Level:     -1,
			MaxBody:   1 << 20,
		},
		Dependencies: DependencyConfig{
			ReadinessTimeout: 2 * time.Second,
		},
	}
}

// IsProduction reports whether the process runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// LoadFile reads values from a YAML file over the current ones.
// Keys present in the file win, including explicit zero values.
func (c *Config) LoadFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv overrides the current values with environment variables and validates the result.
// Start from Default so unset variables keep their built-in values.
func (c *Config) LoadFromEnv() error {
	c.App.Name = getEnvOrDefault("APP_NAME", c.App.Name)
	c.App.Environment = getEnvOrDefault("APP_ENV", c.App.Environment)
	c.App.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.App.ShutdownTimeout)

	c.API.Port = getEnvOrDefault("PORT", c.API.Port)
	c.API.FrontendURL = getEnvOrDefault("FRONTEND_URL", c.API.FrontendURL)
	c.API.TLS = loadTLSFromEnv("API_", c.API.TLS)

	c.Web.Port = getEnvOrDefault("WEB_PORT", c.Web.Port)
	c.Web.TLS = loadTLSFromEnv("WEB_", c.Web.TLS)

	c.RateLimit.Requests = getEnvAsInt("RATE_LIMIT_REQUESTS", c.RateLimit.Requests)
	c.RateLimit.Window = getEnvAsInt("RATE_LIMIT_WINDOW", c.RateLimit.Window)
	c.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", c.RateLimit.Burst)
	c.RateLimit.Cleanup = getEnvOrDefault("RATE_LIMIT_CLEANUP", c.RateLimit.Cleanup)

	c.Compression.MinLength = getEnvAsInt("COMPRESSION_MIN_LENGTH", c.Compression.MinLength)
	c.Compression.Level = getEnvAsInt("COMPRESSION_LEVEL", c.Compression.Level)
	c.Compression.MaxBody = getEnvAsInt64("COMPRESSION_MAX_BODY", c.Compression.MaxBody)

	c.Dependencies.DatabaseURL = getEnvOrDefault("DATABASE_URL", c.Dependencies.DatabaseURL)
	c.Dependencies.RedisURL = getEnvOrDefault("REDIS_URL", c.Dependencies.RedisURL)
	c.Dependencies.ReadinessTimeout = getEnvAsDuration("READINESS_TIMEOUT", c.Dependencies.ReadinessTimeout)

	return c.Validate()
}

func loadTLSFromEnv(prefix string, current TLSConfig) TLSConfig {
	return TLSConfig{
		Domains:  getEnvAsList(prefix+"TLS_DOMAINS", current.Domains),
		Email:    getEnvOrDefault(prefix+"TLS_EMAIL", current.Email),
		CacheDir: getEnvOrDefault(prefix+"TLS_CACHE_DIR", current.CacheDir),
		HTTPPort: getEnvOrDefault(prefix+"TLS_HTTP_PORT", current.HTTPPort),
	}
}

// Validate checks the configuration against its field rules
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.API.TLS.Enabled() && c.Web.TLS.Enabled() && c.API.TLS.HTTPPort == c.Web.TLS.HTTPPort {
		return fmt.Errorf("%w: %w on port %s", ErrInvalidConfig, ErrTLSPortConflict, c.API.TLS.HTTPPort)
	}
	return nil
}

// getEnvAsInt retrieves an environment variable and converts it to an integer
func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvAsInt64 retrieves an environment variable and converts it to an int64
func getEnvAsInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvAsDuration retrieves an environment variable and parses it as a duration
func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvAsList retrieves a comma separated environment variable
func getEnvAsList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
