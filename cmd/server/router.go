package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/eralens-api/internal/api"
	apiMiddleware "github.com/phrazzld/eralens-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(
		apiMiddleware.TraceMiddleware,
	) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	runHandler := api.NewRunHandler(
		app.runService,
		app.config.Server.MaxUploadBytes,
		app.logger,
	)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Run endpoints
		r.Post("/runs", runHandler.CreateRun)

		r.Route("/runs/current", func(r chi.Router) {
			r.Get("/", runHandler.GetRun)
			r.Delete("/", runHandler.ResetRun)
			r.Post("/jobs/{era}/retry", runHandler.RetryJob)
			r.Post("/composite", runHandler.ComposePage)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
