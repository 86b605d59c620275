package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/eralens-api/internal/domain"
	"github.com/phrazzld/eralens-api/internal/scheduler"
)

// RunScheduler defines the scheduler operations the service layer depends on.
// The interface is declared at the point of consumption so the service can be
// tested against a fake without driving the real worker pool.
type RunScheduler interface {
	// StartRun replaces any active run and begins dispatching its jobs
	StartRun(ctx context.Context, direction domain.Direction, input domain.ImageInput) (*domain.Run, error)

	// Retry relaunches a settled job and returns the run it belongs to
	Retry(ctx context.Context, era string) (uuid.UUID, error)

	// Snapshot returns an isolated copy of the active run
	Snapshot(ctx context.Context) (*domain.Run, error)

	// CompletedResults returns every artifact once all jobs are done
	CompletedResults(ctx context.Context) ([]*domain.ImageResult, error)

	// Reset discards the active run
	Reset(ctx context.Context)
}

// PageComposer assembles finished era renditions into a single page image.
type PageComposer interface {
	Compose(ctx context.Context, results []*domain.ImageResult) (*domain.ImageResult, error)
}

// RunService provides era run operations for the API layer.
type RunService interface {
	// StartRun validates the direction and source image, then starts a new
	// run, replacing the previous one wholesale.
	StartRun(ctx context.Context, direction string, input domain.ImageInput) (*domain.Run, error)

	// GetRun returns a snapshot of the active run.
	GetRun(ctx context.Context) (*domain.Run, error)

	// RetryJob relaunches a settled era job and returns the refreshed run.
	RetryJob(ctx context.Context, era string) (*domain.Run, error)

	// ComposePage aggregates all finished renditions into one page image.
	// It fails while any job has not reached the done status.
	ComposePage(ctx context.Context) (*domain.ImageResult, error)

	// Reset discards the active run so a fresh one can be started.
	Reset(ctx context.Context) error
}

// RunServiceError wraps errors from the run service with context.
type RunServiceError struct {
	// Operation is the operation that failed (e.g., "start_run", "compose_page")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for RunServiceError.
func (e *RunServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("run service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("run service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *RunServiceError) Unwrap() error {
	return e.Err
}

// NewRunServiceError creates a new RunServiceError.
// Known scheduler and domain sentinels are translated to their service-level
// counterparts instead of being wrapped.
func NewRunServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, scheduler.ErrNoActiveRun):
		return ErrNoActiveRun
	case errors.Is(err, scheduler.ErrJobNotFound):
		return ErrJobNotFound
	case errors.Is(err, scheduler.ErrJobNotDispatched):
		return ErrJobNotDispatched
	case errors.Is(err, scheduler.ErrJobInFlight):
		return ErrJobInFlight
	case errors.Is(err, scheduler.ErrRunNotReady):
		// Keep the underlying detail, it names the unfinished eras
		return fmt.Errorf("%w: %v", ErrRunNotReady, err)
	case errors.Is(err, domain.ErrInvalidDirection):
		return ErrInvalidDirection
	case errors.Is(err, domain.ErrEmptyImage), errors.Is(err, domain.ErrEmptyImageMIMEType):
		return ErrInvalidImage
	}

	// If not a sentinel to be returned directly, wrap it
	return &RunServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// runServiceImpl implements the RunService interface
type runServiceImpl struct {
	scheduler RunScheduler
	composer  PageComposer
	logger    *slog.Logger
}

// NewRunService creates a new RunService.
// It returns an error if any of the required dependencies are nil.
func NewRunService(
	runScheduler RunScheduler,
	composer PageComposer,
	logger *slog.Logger,
) (RunService, error) {
	// Validate dependencies
	if runScheduler == nil {
		return nil, &RunServiceError{
			Operation: "create_service",
			Message:   "scheduler cannot be nil",
			Err:       nil,
		}
	}
	if composer == nil {
		return nil, &RunServiceError{
			Operation: "create_service",
			Message:   "composer cannot be nil",
			Err:       nil,
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &runServiceImpl{
		scheduler: runScheduler,
		composer:  composer,
		logger:    logger.With("component", "run_service"),
	}, nil
}

// StartRun validates the request and hands the run to the scheduler.
// Any previous run is replaced wholesale; its late writes are dropped by
// the registry.
func (s *runServiceImpl) StartRun(
	ctx context.Context,
	direction string,
	input domain.ImageInput,
) (*domain.Run, error) {
	dir, err := domain.ParseDirection(direction)
	if err != nil {
		s.logger.Debug("rejected run request with bad direction",
			"direction", direction,
			"error", err)
		return nil, NewRunServiceError("start_run", "invalid direction", err)
	}

	if err := input.Validate(); err != nil {
		s.logger.Debug("rejected run request with bad source image",
			"error", err)
		return nil, NewRunServiceError("start_run", "invalid source image", err)
	}

	run, err := s.scheduler.StartRun(ctx, dir, input)
	if err != nil {
		s.logger.Error("failed to start run",
			"direction", direction,
			"error", err)
		return nil, NewRunServiceError("start_run", "failed to start run", err)
	}

	s.logger.Info("run accepted",
		"run_id", run.ID,
		"direction", string(run.Direction),
		"era_count", len(run.Eras))

	return run, nil
}

// GetRun returns a snapshot of the active run.
func (s *runServiceImpl) GetRun(ctx context.Context) (*domain.Run, error) {
	run, err := s.scheduler.Snapshot(ctx)
	if err != nil {
		return nil, NewRunServiceError("get_run", "failed to snapshot run", err)
	}
	return run, nil
}

// RetryJob relaunches a settled era job and returns the refreshed run.
func (s *runServiceImpl) RetryJob(ctx context.Context, era string) (*domain.Run, error) {
	runID, err := s.scheduler.Retry(ctx, era)
	if err != nil {
		s.logger.Debug("retry rejected",
			"era", era,
			"error", err)
		return nil, NewRunServiceError("retry_job", "failed to retry job", err)
	}

	s.logger.Info("job retry accepted",
		"run_id", runID,
		"era", era)

	run, err := s.scheduler.Snapshot(ctx)
	if err != nil {
		return nil, NewRunServiceError("retry_job", "failed to snapshot run", err)
	}
	return run, nil
}

// ComposePage aggregates all finished renditions into one page image.
func (s *runServiceImpl) ComposePage(ctx context.Context) (*domain.ImageResult, error) {
	results, err := s.scheduler.CompletedResults(ctx)
	if err != nil {
		s.logger.Debug("composition gate closed",
			"error", err)
		return nil, NewRunServiceError("compose_page", "run results unavailable", err)
	}

	page, err := s.composer.Compose(ctx, results)
	if err != nil {
		s.logger.Error("failed to compose page",
			"result_count", len(results),
			"error", err)
		return nil, NewRunServiceError("compose_page", "failed to compose page", err)
	}

	s.logger.Info("page composed",
		"result_count", len(results),
		"page_bytes", len(page.Data))

	return page, nil
}

// Reset discards the active run. Resetting when no run exists is a no-op.
func (s *runServiceImpl) Reset(ctx context.Context) error {
	s.scheduler.Reset(ctx)
	s.logger.Info("run reset")
	return nil
}
