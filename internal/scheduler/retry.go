package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// RetryCoordinator relaunches finished jobs. Retries run outside the worker
// pool: each accepted retry gets its own goroutine and does not count
// against the pool's concurrency ceiling, so a retry never waits behind the
// initial dispatch wave.
type RetryCoordinator struct {
	registry *Registry
	executor *Executor
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewRetryCoordinator creates a new RetryCoordinator with the given dependencies.
func NewRetryCoordinator(registry *Registry, executor *Executor, logger *slog.Logger) (*RetryCoordinator, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if executor == nil {
		return nil, errors.New("executor cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &RetryCoordinator{
		registry: registry,
		executor: executor,
		logger:   logger.With("component", "retry_coordinator"),
	}, nil
}

// Retry validates the request against the active run and, when legal,
// relaunches the era job asynchronously. ctx covers the validation only;
// dispatchCtx bounds the relaunched work, which outlives the caller's
// request. Returns the ID of the run the retry belongs to.
func (c *RetryCoordinator) Retry(ctx context.Context, dispatchCtx context.Context, era string) (uuid.UUID, error) {
	runID, err := c.registry.Restart(ctx, era)
	if err != nil {
		return uuid.Nil, err
	}

	c.logger.Info("retrying job", "run_id", runID, "era", era)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.executor.Rerun(dispatchCtx, runID, era); err != nil {
			c.logger.Debug("retry dispatch settled with error",
				"run_id", runID,
				"era", era,
				"error", err)
		}
	}()

	return runID, nil
}

// Wait blocks until every in-flight retry has settled.
func (c *RetryCoordinator) Wait() {
	c.wg.Wait()
}
