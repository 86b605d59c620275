package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/eralens-api/internal/domain"
	"github.com/phrazzld/eralens-api/internal/events"
	"github.com/phrazzld/eralens-api/internal/generation"
)

// Scheduler ties the registry, worker pool, executor, and retry coordinator
// together behind one entry point. It owns the base context bounding all
// asynchronous dispatch work, plus a per-run context so replacing a run
// cancels the superseded run's outstanding model calls.
type Scheduler struct {
	registry *Registry
	pool     *WorkerPool
	executor *Executor
	retries  *RetryCoordinator
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	runCtx    context.Context
	runCancel context.CancelFunc

	runWG sync.WaitGroup
}

// New creates a Scheduler wired to the given transformer and emitter.
func New(transformer generation.Transformer, emitter events.EventEmitter, config WorkerPoolConfig, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	registry, err := NewRegistry(logger, emitter)
	if err != nil {
		return nil, err
	}

	executor, err := NewExecutor(registry, transformer, logger)
	if err != nil {
		return nil, err
	}

	retries, err := NewRetryCoordinator(registry, executor, logger)
	if err != nil {
		return nil, err
	}

	pool := NewWorkerPool(executor, config, logger.With("component", "worker_pool"))

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		registry: registry,
		pool:     pool,
		executor: executor,
		retries:  retries,
		logger:   logger.With("component", "scheduler"),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// StartRun replaces any active run with a fresh one and launches its
// dispatch wave in the background. The returned snapshot shows every job
// pending; progress is observed through Snapshot.
func (s *Scheduler) StartRun(ctx context.Context, direction domain.Direction, input domain.ImageInput) (*domain.Run, error) {
	run, err := s.registry.Initialize(ctx, direction, input)
	if err != nil {
		return nil, err
	}

	// Cancel the previous run's dispatch work. Its writes would be
	// rejected as stale anyway, so there is no point finishing them.
	s.mu.Lock()
	if s.runCancel != nil {
		s.runCancel()
	}
	runCtx, runCancel := context.WithCancel(s.ctx)
	s.runCtx = runCtx
	s.runCancel = runCancel
	s.mu.Unlock()

	s.runWG.Add(1)
	go func() {
		defer s.runWG.Done()
		s.pool.Run(runCtx, run.ID, run.Eras)
		s.logSettled(run.ID)
	}()

	s.logger.Info("run started",
		"run_id", run.ID,
		"direction", run.Direction,
		"job_count", len(run.Jobs))

	return run, nil
}

// Retry relaunches a finished job outside the worker pool.
func (s *Scheduler) Retry(ctx context.Context, era string) (uuid.UUID, error) {
	s.mu.Lock()
	dispatchCtx := s.runCtx
	s.mu.Unlock()

	if dispatchCtx == nil {
		return uuid.Nil, ErrNoActiveRun
	}
	return s.retries.Retry(ctx, dispatchCtx, era)
}

// Snapshot returns a deep copy of the active run.
func (s *Scheduler) Snapshot(ctx context.Context) (*domain.Run, error) {
	return s.registry.Snapshot(ctx)
}

// IsComplete reports whether every job in the active run is done.
func (s *Scheduler) IsComplete(ctx context.Context) (bool, error) {
	return s.registry.IsComplete(ctx)
}

// CompletedResults returns the run's artifacts in era presentation order
// once every job is done, and fails otherwise naming the unfinished eras.
func (s *Scheduler) CompletedResults(ctx context.Context) ([]*domain.ImageResult, error) {
	return s.registry.CompletedResults(ctx)
}

// Reset clears the active run and cancels its in-flight work.
func (s *Scheduler) Reset(ctx context.Context) {
	s.mu.Lock()
	if s.runCancel != nil {
		s.runCancel()
		s.runCtx = nil
		s.runCancel = nil
	}
	s.mu.Unlock()

	s.registry.Reset(ctx)
}

// Stop cancels all dispatch work and blocks until in-flight goroutines
// have settled.
func (s *Scheduler) Stop() {
	s.cancel()
	s.runWG.Wait()
	s.retries.Wait()
	s.logger.Info("scheduler stopped")
}

// logSettled records the outcome of a dispatch wave once the pool drains.
func (s *Scheduler) logSettled(runID uuid.UUID) {
	snap, err := s.registry.Snapshot(context.Background())
	if err != nil || snap.ID != runID {
		s.logger.Debug("run replaced before settling", "run_id", runID)
		return
	}

	var done, failed int
	for _, job := range snap.Jobs {
		switch job.Status {
		case domain.JobStatusDone:
			done++
		case domain.JobStatusError:
			failed++
		}
	}
	s.logger.Info("run settled",
		"run_id", runID,
		"direction", snap.Direction,
		"done", done,
		"failed", failed,
		"complete", snap.Complete())
}
