package handlers

import (
	"net/http"
	"time"

	"bibliovault/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	healthStatus  = "ok"
	healthMessage = "BiblioVault API is running"
)

// HealthHandler answers liveness probes
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler creates a health handler using the wall clock
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

// Health godoc
// @Summary Health check
// @Description Reports that the API process is running. Request content is ignored.
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    healthStatus,
		Message:   healthMessage,
		Timestamp: models.FormatTimestamp(h.now()),
	})
}
