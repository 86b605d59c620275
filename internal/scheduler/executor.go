package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/eralens-api/internal/generation"
)

// Executor runs a single era job end to end: it commits in_progress,
// derives the prompt, invokes the transformer, and commits exactly one
// terminal status for the dispatch. It never retries internally; retry is
// an explicit operation handled by the RetryCoordinator.
type Executor struct {
	registry    *Registry
	transformer generation.Transformer
	logger      *slog.Logger
}

// NewExecutor creates a new Executor with the given dependencies.
func NewExecutor(registry *Registry, transformer generation.Transformer, logger *slog.Logger) (*Executor, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if transformer == nil {
		return nil, errors.New("transformer cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Executor{
		registry:    registry,
		transformer: transformer,
		logger:      logger.With("component", "job_executor"),
	}, nil
}

// Execute performs the initial dispatch for a queued job. The in_progress
// write happens before the model call so observers see the job leave the
// queue the moment a worker picks it up.
func (e *Executor) Execute(ctx context.Context, runID uuid.UUID, era string) error {
	if err := e.registry.Begin(ctx, runID, era); err != nil {
		e.logger.Debug("skipping dispatch, job no longer eligible",
			"run_id", runID,
			"era", era,
			"error", err)
		return err
	}
	return e.invoke(ctx, runID, era)
}

// Rerun performs a retry dispatch. The retry guard has already moved the
// job to in_progress, so Rerun goes straight to the model call.
func (e *Executor) Rerun(ctx context.Context, runID uuid.UUID, era string) error {
	return e.invoke(ctx, runID, era)
}

// invoke makes the model call and commits the dispatch's single terminal
// status. A failure lands on this job alone; sibling dispatches proceed
// untouched.
func (e *Executor) invoke(ctx context.Context, runID uuid.UUID, era string) error {
	logger := e.logger.With("run_id", runID, "era", era)

	input, direction, err := e.registry.Source(ctx, runID)
	if err != nil {
		logger.Debug("skipping dispatch, run no longer active", "error", err)
		return err
	}

	prompt, err := generation.PromptFor(direction, era)
	if err != nil {
		logger.Error("failed to derive prompt", "error", err)
		e.fail(ctx, runID, era, "failed to derive prompt for era")
		return err
	}

	logger.Info("transforming image", "direction", direction)
	result, err := e.transformer.Transform(ctx, input, prompt, era)
	if err != nil {
		logger.Error("image transformation failed", "error", err)
		e.fail(ctx, runID, era, transformErrorMessage(err))
		return err
	}

	if err := e.registry.Complete(ctx, runID, era, result); err != nil {
		logger.Debug("dropping result, job no longer accepts writes", "error", err)
		return err
	}

	logger.Info("job completed")
	return nil
}

// fail records the terminal error status. A rejected write means the run
// was replaced mid-flight and the failure is dropped.
func (e *Executor) fail(ctx context.Context, runID uuid.UUID, era, message string) {
	if err := e.registry.Fail(ctx, runID, era, message); err != nil {
		e.logger.Debug("dropping failure, job no longer accepts writes",
			"run_id", runID,
			"era", era,
			"error", err)
	}
}

// transformErrorMessage converts a transformer error into the message
// stored on the job and shown to callers. Internal detail stays in logs.
func transformErrorMessage(err error) string {
	switch {
	case errors.Is(err, generation.ErrContentBlocked):
		return "the model blocked this transformation for safety reasons"
	case errors.Is(err, generation.ErrInvalidResponse):
		return "the model returned no usable image"
	case errors.Is(err, generation.ErrTransientFailure):
		return "the model was temporarily unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "the transformation was cancelled"
	default:
		return "image transformation failed"
	}
}
