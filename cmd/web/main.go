// Package main provides the entry point for the BiblioVault landing page server
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bibliovault/internal/api/middleware"
	"bibliovault/internal/config"
	"bibliovault/internal/server"
	"bibliovault/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	envFile := flag.String("env", ".env", "Path to env file")
	configFile := flag.String("config", "", "Path to optional YAML config file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && *envFile == ".env" {
		log.Printf("Warning: %v", err)
	} else if err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}

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

	router, err := web.NewRouter(cfg, middleware.NewMetrics("bibliovault_web"))
	if err != nil {
		log.Fatalf("Failed to build landing page: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("%s web running on %s", cfg.App.Name, cfg.Web.TLS.URL(cfg.Web.Port))

	if err := server.New("web", cfg.Web.Port, router, cfg.Web.TLS, cfg.App.ShutdownTimeout).Run(ctx); err != nil {
		stop()
		log.Fatalf("Server error: %v", err)
	}
}
