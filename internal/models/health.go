package models

import "time"

// TimestampFormat is ISO-8601 in UTC with millisecond precision
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Readiness states
const (
	StatusReady       = "ready"
	StatusUnavailable = "unavailable"
)

// HealthResponse represents the response from the health check endpoint
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Message   string `json:"message" example:"BiblioVault API is running"`
	Timestamp string `json:"timestamp" example:"2024-03-20T13:00:00.000Z"`
}

// ReadinessResponse represents the response from the readiness endpoint
type ReadinessResponse struct {
	Status    string            `json:"status" example:"ready"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp" example:"2024-03-20T13:00:00.000Z"`
}

// FormatTimestamp renders t in TimestampFormat
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}
