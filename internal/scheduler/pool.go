package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Dispatcher executes a single era job against the given run.
type Dispatcher interface {
	// Execute runs one dispatch for the era, recording its outcome in the
	// registry. The returned error is for observability only; the job's
	// terminal status is already committed when Execute returns.
	Execute(ctx context.Context, runID uuid.UUID, era string) error
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
	}
}

// WorkerPool fans a run's era jobs out to a bounded set of worker
// goroutines. The worker count is the concurrency ceiling for model calls
// made during the run's initial dispatch wave.
type WorkerPool struct {
	dispatcher  Dispatcher
	workerCount int
	logger      *slog.Logger
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(dispatcher Dispatcher, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	// Apply defaults for invalid config values
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	return &WorkerPool{
		dispatcher:  dispatcher,
		workerCount: workerCount,
		logger:      logger,
	}
}

// Run dispatches every era exactly once and blocks until all workers have
// finished. Eras are picked up in the given order; completion order depends
// on individual dispatch latency. The queue is seeded up front and closed,
// so each worker exits once the queue drains or ctx ends.
func (p *WorkerPool) Run(ctx context.Context, runID uuid.UUID, eras []string) {
	queue := make(chan string, len(eras))
	for _, era := range eras {
		queue <- era
	}
	close(queue)

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg, i, runID, queue)
	}
	wg.Wait()
}

// worker consumes eras from the queue until it drains or the context ends.
func (p *WorkerPool) worker(ctx context.Context, wg *sync.WaitGroup, id int, runID uuid.UUID, queue <-chan string) {
	defer wg.Done()

	logger := p.logger.With("worker_id", id, "run_id", runID)
	logger.Debug("starting worker")

	for {
		select {
		case <-ctx.Done():
			// Context cancelled, stop worker
			logger.Debug("stopping worker", "reason", ctx.Err())
			return

		case era, ok := <-queue:
			if !ok {
				// Queue drained, stop worker
				logger.Debug("work queue drained, stopping worker")
				return
			}

			if err := p.dispatcher.Execute(ctx, runID, era); err != nil {
				logger.Debug("dispatch settled with error", "era", era, "error", err)
			}
		}
	}
}
