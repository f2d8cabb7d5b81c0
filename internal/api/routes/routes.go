// Package routes handles the setup and configuration of API routes
package routes

import (
	"net/http"

	_ "bibliovault/docs" // Import swagger docs
	"bibliovault/internal/api/handlers"
	"bibliovault/internal/api/middleware"
	"bibliovault/internal/config"
	"bibliovault/internal/database"
	"bibliovault/internal/models"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes and their handlers
func SetupRoutes(cfg *config.Config, limiter *middleware.RateLimiter, metrics *middleware.Metrics, checkers ...database.Checker) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.API.FrontendURL))
	r.Use(metrics.Middleware())
	r.Use(middleware.Compression(middleware.NewCompressionConfig(cfg.Compression)))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	})

	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(cfg.Dependencies.ReadinessTimeout, checkers...)

	// Routes without rate limiting
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	{
		// Liveness must answer even when a client is throttled
		api.GET("/health", healthHandler.Health)
		api.HEAD("/health", healthHandler.Health)

		limited := api.Group("")
		limited.Use(limiter.Middleware())
		limited.Use(middleware.DecompressBody(cfg.Compression.MaxBody))
		{
			limited.GET("/ready", readinessHandler.Ready)
		}
	}

	return r
}
