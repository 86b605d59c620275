// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/eralens-api/internal/api/shared"
	"github.com/phrazzld/eralens-api/internal/platform/logger"
	"github.com/phrazzld/eralens-api/internal/redact"
	"github.com/phrazzld/eralens-api/internal/service"
)

// RunHandler handles run-related HTTP requests
type RunHandler struct {
	runService     service.RunService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(
	runService service.RunService,
	maxUploadBytes int64,
	logger *slog.Logger,
) *RunHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RunHandler")
	}

	return &RunHandler{
		runService:     runService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "run_handler")),
	}
}

// CreateRun handles POST /api/runs requests
// It reads the uploaded photograph and direction, starts a new run, and
// replaces any run already in progress.
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	// Get logger from context or use default
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	// Read the source image from the multipart form. This also parses the
	// form, so the direction field becomes available afterwards.
	input, err := shared.ReadImageUpload(w, r, h.maxUploadBytes)
	if err != nil {
		log.Warn("rejected image upload", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	req := CreateRunRequest{Direction: r.FormValue("direction")}

	// Validate request
	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("direction", req.Direction))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	// Start the run
	run, err := h.runService.StartRun(r.Context(), req.Direction, input)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)

		// For generic server errors in CreateRun, use a specific message
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to start run"
		}

		// Log the full error details but only send sanitized message to client
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	// Transform domain object to response
	response := runToResponse(run)

	// Return response with 202 Accepted status (era jobs render asynchronously)
	log.Debug("run accepted",
		slog.String("run_id", run.ID.String()),
		slog.String("direction", string(run.Direction)))
	shared.RespondWithJSON(w, r, http.StatusAccepted, response)
}

// GetRun handles GET /api/runs/current requests
// It returns a snapshot of the active run.
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runService.GetRun(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, runToResponse(run))
}

// RetryJob handles POST /api/runs/current/jobs/{era}/retry requests
// It relaunches a settled era job and returns the refreshed run snapshot.
func (h *RunHandler) RetryJob(w http.ResponseWriter, r *http.Request) {
	// Get logger from context or use default
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	// Extract era label from URL path using chi router
	era := chi.URLParam(r, "era")
	if era == "" {
		log.Warn("era not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Era is required")
		return
	}

	run, err := h.runService.RetryJob(r.Context(), era)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)

		// For generic server errors in RetryJob, use a specific message
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to retry era job"
		}

		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	// Return response with 202 Accepted status (the retry renders asynchronously)
	log.Debug("retry accepted",
		slog.String("run_id", run.ID.String()),
		slog.String("era", era))
	shared.RespondWithJSON(w, r, http.StatusAccepted, runToResponse(run))
}

// ComposePage handles POST /api/runs/current/composite requests
// It checks that every era job is done and responds with the assembled page
// image bytes.
func (h *RunHandler) ComposePage(w http.ResponseWriter, r *http.Request) {
	// Get logger from context or use default
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	page, err := h.runService.ComposePage(r.Context())
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)

		// For generic server errors in ComposePage, use a specific message
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to compose page"
		}

		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("page composed",
		slog.String("mime_type", page.MIMEType),
		slog.Int("page_bytes", len(page.Data)))
	shared.RespondWithImage(w, r, page)
}

// ResetRun handles DELETE /api/runs/current requests
// It discards the active run. Resetting when no run exists is still a 204.
func (h *RunHandler) ResetRun(w http.ResponseWriter, r *http.Request) {
	if err := h.runService.Reset(r.Context()); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to reset run", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
