package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/eralens-api/internal/domain"
	"github.com/phrazzld/eralens-api/internal/events"
)

// Registry is the single source of truth for the active run. Every job
// status transition goes through it under one write lock, and each
// committed transition is published as a JobStatusEvent. Writes carry the
// run ID they belong to so results from a replaced run are rejected
// instead of corrupting the run that superseded it.
type Registry struct {
	mu      sync.RWMutex
	run     *domain.Run
	logger  *slog.Logger
	emitter events.EventEmitter
}

// NewRegistry creates a new Registry with the given dependencies.
func NewRegistry(logger *slog.Logger, emitter events.EventEmitter) (*Registry, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}

	return &Registry{
		logger:  logger.With("component", "run_registry"),
		emitter: emitter,
	}, nil
}

// Initialize replaces the active run wholesale with a fresh run for the
// given direction: one pending job per era in the direction's fixed set.
// Late writes against the previous run will be rejected as stale.
func (r *Registry) Initialize(ctx context.Context, direction domain.Direction, input domain.ImageInput) (*domain.Run, error) {
	run, err := domain.NewRun(direction, input)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	previous := r.run
	r.run = run
	r.mu.Unlock()

	if previous != nil {
		r.logger.Info("replacing active run",
			"previous_run_id", previous.ID,
			"run_id", run.ID,
			"direction", run.Direction)
	} else {
		r.logger.Info("initialized run",
			"run_id", run.ID,
			"direction", run.Direction,
			"job_count", len(run.Jobs))
	}

	return run.Snapshot(), nil
}

// Snapshot returns a deep copy of the active run for inspection.
func (r *Registry) Snapshot(ctx context.Context) (*domain.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.run == nil {
		return nil, ErrNoActiveRun
	}
	return r.run.Snapshot(), nil
}

// Source returns the source image and direction for the given run, used by
// dispatches to build their model call.
func (r *Registry) Source(ctx context.Context, runID uuid.UUID) (domain.ImageInput, domain.Direction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.run == nil {
		return domain.ImageInput{}, "", ErrNoActiveRun
	}
	if r.run.ID != runID {
		return domain.ImageInput{}, "", ErrStaleRun
	}
	return r.run.Input, r.run.Direction, nil
}

// Reset clears the active run. Resetting an empty registry is a no-op.
func (r *Registry) Reset(ctx context.Context) {
	r.mu.Lock()
	previous := r.run
	r.run = nil
	r.mu.Unlock()

	if previous != nil {
		r.logger.Info("cleared active run", "run_id", previous.ID)
	}
}

// Begin marks a job as in_progress ahead of its first dispatch.
func (r *Registry) Begin(ctx context.Context, runID uuid.UUID, era string) error {
	return r.transition(ctx, runID, era, func(job *domain.Job) error {
		return job.MarkInProgress()
	})
}

// Complete records a successful dispatch with its artifact.
func (r *Registry) Complete(ctx context.Context, runID uuid.UUID, era string, result *domain.ImageResult) error {
	return r.transition(ctx, runID, era, func(job *domain.Job) error {
		return job.MarkDone(result)
	})
}

// Fail records a failed dispatch with a human-readable message. The failure
// stays on this job only; sibling jobs are not touched.
func (r *Registry) Fail(ctx context.Context, runID uuid.UUID, era string, message string) error {
	return r.transition(ctx, runID, era, func(job *domain.Job) error {
		return job.MarkError(message)
	})
}

// Restart validates a retry request and, when legal, moves the job back to
// in_progress. Only jobs that already finished a dispatch may be retried: a
// pending job still belongs to the queue, and an in-flight job already has
// a dispatch running. Returns the ID of the run the retry belongs to.
func (r *Registry) Restart(ctx context.Context, era string) (uuid.UUID, error) {
	r.mu.Lock()
	if r.run == nil {
		r.mu.Unlock()
		return uuid.Nil, ErrNoActiveRun
	}
	runID := r.run.ID
	job, ok := r.run.Job(era)
	if !ok {
		r.mu.Unlock()
		return uuid.Nil, ErrJobNotFound
	}
	switch job.Status {
	case domain.JobStatusPending:
		r.mu.Unlock()
		return uuid.Nil, ErrJobNotDispatched
	case domain.JobStatusInProgress:
		r.mu.Unlock()
		return uuid.Nil, ErrJobInFlight
	}
	if err := job.MarkInProgress(); err != nil {
		r.mu.Unlock()
		return uuid.Nil, err
	}
	r.mu.Unlock()

	r.emit(ctx, runID, era, string(domain.JobStatusInProgress), "")
	return runID, nil
}

// IsComplete reports whether every job in the active run is done.
func (r *Registry) IsComplete(ctx context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.run == nil {
		return false, ErrNoActiveRun
	}
	return r.run.Complete(), nil
}

// CompletedResults returns each job's artifact in era presentation order.
// This is the aggregation gate: unless every job is done it fails, naming
// the eras still unfinished.
func (r *Registry) CompletedResults(ctx context.Context) ([]*domain.ImageResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.run == nil {
		return nil, ErrNoActiveRun
	}

	var unfinished []string
	results := make([]*domain.ImageResult, 0, len(r.run.Eras))
	for _, era := range r.run.Eras {
		job, ok := r.run.Job(era)
		if !ok || job.Status != domain.JobStatusDone {
			unfinished = append(unfinished, era)
			continue
		}
		result := *job.Result
		results = append(results, &result)
	}
	if len(unfinished) > 0 {
		return nil, fmt.Errorf("%w: unfinished eras: %s", ErrRunNotReady, strings.Join(unfinished, ", "))
	}

	return results, nil
}

// transition applies fn to the era's job under the write lock and emits
// the status event after the transition has been committed. Emission
// happens outside the lock so a slow handler cannot block other writes.
func (r *Registry) transition(ctx context.Context, runID uuid.UUID, era string, fn func(*domain.Job) error) error {
	r.mu.Lock()
	if r.run == nil {
		r.mu.Unlock()
		return ErrNoActiveRun
	}
	if r.run.ID != runID {
		r.mu.Unlock()
		return ErrStaleRun
	}
	job, ok := r.run.Job(era)
	if !ok {
		r.mu.Unlock()
		return ErrJobNotFound
	}
	if err := fn(job); err != nil {
		r.mu.Unlock()
		return err
	}
	status := string(job.Status)
	message := job.ErrorMessage
	r.mu.Unlock()

	r.emit(ctx, runID, era, status, message)
	return nil
}

// emit publishes a status event. Emission failures are logged, never
// propagated: an observer error must not fail a committed transition.
func (r *Registry) emit(ctx context.Context, runID uuid.UUID, era, status, message string) {
	event := events.NewJobStatusEvent(runID, era, status, message)
	if err := r.emitter.EmitEvent(ctx, event); err != nil {
		r.logger.Warn("failed to emit job status event",
			"error", err,
			"run_id", runID,
			"era", era,
			"status", status)
	}
}
