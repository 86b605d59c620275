package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrInvalidDirection indicates the requested direction is neither past nor future.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidDirection = errors.New("direction must be past or future")

	// ErrInvalidImage indicates the uploaded source image is missing or unusable.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidImage = errors.New("source image is missing or invalid")

	// ErrNoActiveRun indicates no run has been started yet, or the last run was reset.
	// API layer should map this to HTTP 404 Not Found.
	ErrNoActiveRun = errors.New("no active run")

	// ErrJobNotFound indicates the requested era does not exist in the active run.
	// API layer should map this to HTTP 404 Not Found.
	ErrJobNotFound = errors.New("era job not found in active run")

	// ErrJobNotDispatched indicates a retry was requested for a job the worker
	// pool has not picked up yet.
	// API layer should map this to HTTP 409 Conflict.
	ErrJobNotDispatched = errors.New("era job has not been dispatched yet")

	// ErrJobInFlight indicates a retry was requested for a job whose
	// transformation is still running.
	// API layer should map this to HTTP 409 Conflict.
	ErrJobInFlight = errors.New("era job is still in flight")

	// ErrRunNotReady indicates page composition was requested before every job
	// in the run reached the done status.
	// API layer should map this to HTTP 409 Conflict.
	ErrRunNotReady = errors.New("run is not ready for composition")
)
