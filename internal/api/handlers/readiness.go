package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bibliovault/internal/database"
	"bibliovault/internal/models"

	"github.com/gin-gonic/gin"
)

// ReadinessHandler checks the optional backing services
type ReadinessHandler struct {
	checkers []database.Checker
	timeout  time.Duration
	now      func() time.Time
}

// NewReadinessHandler creates a readiness handler. Each probe is bounded by timeout.
func NewReadinessHandler(timeout time.Duration, checkers ...database.Checker) *ReadinessHandler {
	return &ReadinessHandler{
		checkers: checkers,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Ready godoc
// @Summary Readiness check
// @Description Pings every configured dependency
// @Tags health
// @Produce json
// @Success 200 {object} models.ReadinessResponse
// @Failure 503 {object} models.ReadinessResponse "A dependency is unavailable"
// @Failure 429 {object} models.RateLimitResponse "Rate limit exceeded"
// @Router /ready [get]
func (h *ReadinessHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks, healthy := h.run(ctx)

	resp := models.ReadinessResponse{
		Status:    models.StatusReady,
		Checks:    checks,
		Timestamp: models.FormatTimestamp(h.now()),
	}
	if !healthy {
		resp.Status = models.StatusUnavailable
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// run pings all checkers concurrently
func (h *ReadinessHandler) run(ctx context.Context) (map[string]string, bool) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		checks  = make(map[string]string, len(h.checkers))
		healthy = true
	)

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(checker database.Checker) {
			defer wg.Done()
			err := checker.Ping(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				checks[checker.Name()] = err.Error()
				healthy = false
				return
			}
			checks[checker.Name()] = "ok"
		}(checker)
	}
	wg.Wait()

	return checks, healthy
}
