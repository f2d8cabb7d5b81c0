package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RateLimitResponse is returned with status 429
type RateLimitResponse struct {
	Error      string `json:"error" example:"rate limit exceeded"`
	RetryAfter string `json:"retry_after" example:"1s"`
}
