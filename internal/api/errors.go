package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/eralens-api/internal/api/shared"
	"github.com/phrazzld/eralens-api/internal/service"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, shared.ErrMissingImage):
		return http.StatusBadRequest

	// Upload limit errors
	case errors.Is(err, shared.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, shared.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType

	// Not found errors
	case errors.Is(err, service.ErrNoActiveRun),
		errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrJobNotDispatched),
		errors.Is(err, service.ErrJobInFlight),
		errors.Is(err, service.ErrRunNotReady):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	// Map specific error types to user-friendly messages
	switch {
	// Bad request errors
	case errors.Is(err, service.ErrInvalidDirection):
		return "Direction must be past or future"

	case errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, shared.ErrMissingImage):
		return "A source image is required"

	// Upload limit errors
	case errors.Is(err, shared.ErrImageTooLarge):
		return "Image exceeds the maximum upload size"

	case errors.Is(err, shared.ErrUnsupportedImage):
		return "Image must be JPEG, PNG, or WebP"

	// Not found errors
	case errors.Is(err, service.ErrNoActiveRun):
		return "No active run"

	case errors.Is(err, service.ErrJobNotFound):
		return "Era not found in active run"

	// Conflict errors
	case errors.Is(err, service.ErrJobNotDispatched):
		return "Era job has not started yet and cannot be retried"

	case errors.Is(err, service.ErrJobInFlight):
		return "Era job is still running and cannot be retried"

	case errors.Is(err, service.ErrRunNotReady):
		return "Run is not finished yet"

	// Default case for unknown errors
	default:
		// Check the failed operation recorded by the service layer so the
		// client at least learns which action failed.
		if strings.Contains(err.Error(), "start_run") {
			return "Failed to start run"
		} else if strings.Contains(err.Error(), "retry_job") {
			return "Failed to retry era job"
		} else if strings.Contains(err.Error(), "compose_page") {
			return "Failed to compose page"
		}
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'CreateRunRequest.Direction' Error:Field validation for 'Direction' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			// Further split to get just the field validation part
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				// Create a cleaner error message
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "oneof":
		return "invalid value"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
