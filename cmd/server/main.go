// Package main implements the entry point for the EraLens API server
// which renders an uploaded photograph across six past or future eras
// through LLM image generation.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/phrazzld/eralens-api/internal/config"
	"github.com/phrazzld/eralens-api/internal/platform/logger"
)

// main is the entry point for the eralens-api server.
// It initializes configuration, sets up logging, wires the generation
// pipeline, and runs the HTTP server until a shutdown signal arrives.
func main() {
	// Load .env if present. Deployed environments set variables directly.
	_ = godotenv.Load()

	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging, and builds the
// application with all components wired.
func initializeApp(ctx context.Context) (*application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	// Log configuration details using structured logging
	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_count", cfg.Scheduler.WorkerCount,
		"model", cfg.LLM.ModelName)

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}

	return app, nil
}
