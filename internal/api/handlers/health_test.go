package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bibliovault/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		header map[string]string
	}{
		{
			name:   "Plain GET",
			method: http.MethodGet,
			target: "/api/health",
		},
		{
			name:   "Query string is ignored",
			method: http.MethodGet,
			target: "/api/health?verbose=true&check=db",
		},
		{
			name:   "JSON body is ignored",
			method: http.MethodGet,
			target: "/api/health",
			body:   `{"status":"down"}`,
			header: map[string]string{"Content-Type": "application/json"},
		},
		{
			name:   "Malformed body is ignored",
			method: http.MethodGet,
			target: "/api/health",
			body:   `{not json`,
			header: map[string]string{"Content-Type": "application/json"},
		},
		{
			name:   "Form body is ignored",
			method: http.MethodGet,
			target: "/api/health",
			body:   "status=down",
			header: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler()

			router := gin.New()
			router.GET("/api/health", handler.Health)

			before := time.Now().UTC().Truncate(time.Millisecond)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			require.Contains(t, w.Header().Get("Content-Type"), "application/json")

			var resp models.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, "ok", resp.Status)
			require.Equal(t, "BiblioVault API is running", resp.Message)

			ts, err := time.Parse(time.RFC3339Nano, resp.Timestamp)
			require.NoError(t, err, "timestamp must be ISO-8601")
			require.False(t, ts.Before(before))
			require.WithinDuration(t, time.Now(), ts, 5*time.Second)
		})
	}
}

func TestHealthHandler_TimestampFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewHealthHandler()
	handler.now = func() time.Time {
		return time.Date(2024, 3, 20, 15, 4, 5, 123456789, time.FixedZone("CET", 3600))
	}

	router := gin.New()
	router.GET("/api/health", handler.Health)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t,
		`{"status":"ok","message":"BiblioVault API is running","timestamp":"2024-03-20T14:04:05.123Z"}`,
		w.Body.String())
}
