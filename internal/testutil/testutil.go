// Package testutil provides utilities for testing
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"bibliovault/internal/config"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

// ProjectRoot returns the absolute path of the repository root
func ProjectRoot(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")

	// Two levels up from this file
	root, err := filepath.Abs(filepath.Join(filepath.Dir(filename), "..", ".."))
	require.NoError(t, err, "Failed to get absolute project root path")
	return root
}

// LoadTestConfig loads configuration from .env.test.
// Values are applied with t.Setenv so they do not leak between tests.
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()

	env, err := godotenv.Read(filepath.Join(ProjectRoot(t), ".env.test"))
	require.NoError(t, err, "Failed to read .env.test file")
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg := config.Default()
	require.NoError(t, cfg.LoadFromEnv(), "Failed to load config")
	return cfg
}

// PerformRequest sends a request through handler and returns the recorded response
func PerformRequest(handler http.Handler, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}
