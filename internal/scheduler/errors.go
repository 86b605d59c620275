package scheduler

import "errors"

// Common errors returned by the scheduler package
var (
	// ErrNoActiveRun is returned when an operation requires a run and none exists
	ErrNoActiveRun = errors.New("no active run")

	// ErrStaleRun is returned when a write targets a run that has been replaced
	ErrStaleRun = errors.New("run has been superseded")

	// ErrJobNotFound is returned when an era is not part of the active run
	ErrJobNotFound = errors.New("era is not part of the active run")

	// ErrJobNotDispatched is returned when a retry targets a job still waiting
	// for its first dispatch
	ErrJobNotDispatched = errors.New("job has not been dispatched yet")

	// ErrJobInFlight is returned when a retry targets a job whose dispatch is
	// still running
	ErrJobInFlight = errors.New("job is already in progress")

	// ErrRunNotReady is returned when aggregation is requested before every
	// job has finished successfully
	ErrRunNotReady = errors.New("run is not ready for aggregation")
)
