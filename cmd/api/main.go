// Package main provides the entry point for the BiblioVault API server
// @title BiblioVault API
// @version 1.0
// @description BiblioVault API server.
// @host localhost:3000
// @BasePath /api
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bibliovault/internal/api/middleware"
	"bibliovault/internal/api/routes"
	"bibliovault/internal/config"
	"bibliovault/internal/database"
	"bibliovault/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command line flags
	envFile := flag.String("env", ".env", "Path to env file")
	configFile := flag.String("config", "", "Path to optional YAML config file")
	flag.Parse()

	// Load environment file
	if err := godotenv.Load(*envFile); err != nil && *envFile == ".env" {
		log.Printf("Warning: %v", err)
	} else if err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}

	// Load configuration
	cfg := config.Default()
	if *configFile != "" {
		if err := cfg.LoadFile(*configFile); err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Optional readiness dependencies
	checkers, closers, err := database.Setup(cfg.Dependencies)
	if err != nil {
		log.Fatalf("Failed to set up dependencies: %v", err)
	}
	defer database.CloseAll(closers)

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		log.Fatalf("Failed to create rate limiter: %v", err)
	}
	defer limiter.Stop()

	metrics := middleware.NewMetrics("bibliovault_api")

	router := routes.SetupRoutes(cfg, limiter, metrics, checkers...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("🚀 %s backend running on %s", cfg.App.Name, cfg.API.TLS.URL(cfg.API.Port))
	log.Printf("📚 Environment: %s", cfg.App.Environment)

	srv := server.New("api", cfg.API.Port, router, cfg.API.TLS, cfg.App.ShutdownTimeout)
	if err := srv.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		stop()
		database.CloseAll(closers)
		limiter.Stop()
		os.Exit(1)
	}
}
