package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/eralens-api/internal/composite"
	"github.com/phrazzld/eralens-api/internal/config"
	"github.com/phrazzld/eralens-api/internal/events"
	"github.com/phrazzld/eralens-api/internal/generation"
	"github.com/phrazzld/eralens-api/internal/platform/gemini"
	"github.com/phrazzld/eralens-api/internal/scheduler"
	"github.com/phrazzld/eralens-api/internal/service"
)

// JobStatusLogHandler is an event handler that logs job status changes as
// the scheduler commits them. It is the default consumer of the event
// stream; additional handlers can be registered alongside it.
type JobStatusLogHandler struct {
	logger *slog.Logger
}

// HandleEvent logs the status transition carried by the event.
func (h *JobStatusLogHandler) HandleEvent(
	ctx context.Context,
	event *events.JobStatusEvent,
) error {
	if event.ErrorMessage != "" {
		h.logger.Warn("era job failed",
			"run_id", event.RunID,
			"era", event.Era,
			"status", event.Status,
			"error_message", event.ErrorMessage,
			"event_id", event.ID)
		return nil
	}

	h.logger.Info("era job status changed",
		"run_id", event.RunID,
		"era", event.Era,
		"status", event.Status,
		"event_id", event.ID)
	return nil
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger

	// Generation pipeline
	transformer  generation.Transformer
	runScheduler *scheduler.Scheduler
	composer     *composite.GridComposer

	// Service interfaces
	runService service.RunService

	// Event system
	eventEmitter events.EventEmitter
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration and logger that must be
// established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	// Create the LLM transformer
	var err error
	app.transformer, err = gemini.NewGeminiTransformer(
		ctx,
		logger.With("component", "llm_transformer"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM transformer: %w", err)
	}
	logger.Info("LLM transformer initialized successfully", "model", cfg.LLM.ModelName)

	// Initialize event emitter and register the status log handler
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(&JobStatusLogHandler{
		logger: logger.With("component", "job_status_log_handler"),
	})
	app.eventEmitter = emitter

	// Initialize the scheduler and its worker pool
	app.runScheduler, err = scheduler.New(
		app.transformer,
		app.eventEmitter,
		scheduler.WorkerPoolConfig{WorkerCount: cfg.Scheduler.WorkerCount},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	logger.Info("Scheduler initialized",
		"worker_count", cfg.Scheduler.WorkerCount)

	// Initialize the page composer
	app.composer, err = composite.NewGridComposer(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize composer: %w", err)
	}

	// Initialize run service
	app.runService, err = service.NewRunService(
		app.runScheduler,
		app.composer,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop the scheduler and wait for in-flight dispatches to settle
	if app.runScheduler != nil {
		app.runScheduler.Stop()
	}

	app.logger.Info("Application shutdown completed")
}
