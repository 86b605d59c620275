package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/eralens-api/internal/domain"
	"github.com/phrazzld/eralens-api/internal/events"
	"github.com/phrazzld/eralens-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, transformer generation.Transformer) *Scheduler {
	t.Helper()

	s, _ := newTestSchedulerWithEvents(t, transformer)
	return s
}

func newTestSchedulerWithEvents(t *testing.T, transformer generation.Transformer) (*Scheduler, *recordingHandler) {
	t.Helper()

	logger := setupTestLogger()
	handler := &recordingHandler{}
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(handler)

	s, err := New(transformer, emitter, DefaultWorkerPoolConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(s.Stop)
	return s, handler
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestNewScheduler(t *testing.T) {
	logger := setupTestLogger()
	emitter := events.NewInMemoryEventEmitter(logger)
	transformer := &generation.MockTransformer{}

	s, err := New(transformer, emitter, DefaultWorkerPoolConfig(), logger)
	require.NoError(t, err)
	assert.Equal(t, 2, s.pool.workerCount)
	s.Stop()

	_, err = New(transformer, emitter, DefaultWorkerPoolConfig(), nil)
	assert.Error(t, err)

	_, err = New(nil, emitter, DefaultWorkerPoolConfig(), logger)
	assert.Error(t, err)

	_, err = New(transformer, nil, DefaultWorkerPoolConfig(), logger)
	assert.Error(t, err)
}

func TestSchedulerHappyPath(t *testing.T) {
	transformer := &generation.MockTransformer{}
	s := newTestScheduler(t, transformer)
	ctx := context.Background()

	run, err := s.StartRun(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)

	// The returned snapshot shows the initial state: every job pending
	for _, job := range run.Jobs {
		assert.Equal(t, domain.JobStatusPending, job.Status)
	}

	waitFor(t, 2*time.Second, func() bool {
		complete, err := s.IsComplete(ctx)
		return err == nil && complete
	}, "Timed out waiting for run to complete")

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, snap.ID)
	for era, job := range snap.Jobs {
		assert.Equal(t, domain.JobStatusDone, job.Status, "job %s should be done", era)
		assert.NotNil(t, job.Result)
		assert.Empty(t, job.ErrorMessage)
	}

	// Each era was transformed exactly once
	calls := transformer.Calls()
	eras := make([]string, 0, len(calls))
	for _, call := range calls {
		eras = append(eras, call.Era)
	}
	assert.ElementsMatch(t, run.Eras, eras)
}

func TestSchedulerHonorsConcurrencyCeiling(t *testing.T) {
	arrivals := make(chan string, 12)
	release := make(chan struct{})
	transformer := &generation.MockTransformer{
		TransformFn: func(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error) {
			arrivals <- era
			select {
			case <-release:
				return testResult(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	s := newTestScheduler(t, transformer)
	ctx := context.Background()

	_, err := s.StartRun(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)

	// Both workers pick up a job
	for i := 0; i < 2; i++ {
		select {
		case <-arrivals:
		case <-time.After(500 * time.Millisecond):
			t.Fatal("Timed out waiting for model calls to start")
		}
	}

	// With both workers occupied, no third model call may start
	select {
	case era := <-arrivals:
		t.Fatalf("Model call for %s exceeded the concurrency ceiling", era)
	case <-time.After(100 * time.Millisecond):
		// Ceiling held
	}

	close(release)
	waitFor(t, 2*time.Second, func() bool {
		complete, err := s.IsComplete(ctx)
		return err == nil && complete
	}, "Timed out waiting for run to complete")
}

func TestSchedulerFailureIsolationAndRetry(t *testing.T) {
	var mu sync.Mutex
	attempts := make(map[string]int)
	transformer := &generation.MockTransformer{
		TransformFn: func(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error) {
			mu.Lock()
			attempts[era]++
			attempt := attempts[era]
			mu.Unlock()

			if era == "1970s" && attempt == 1 {
				return nil, fmt.Errorf("%w: upstream hiccup", generation.ErrTransientFailure)
			}
			return testResult(), nil
		},
	}
	s := newTestScheduler(t, transformer)
	ctx := context.Background()

	run, err := s.StartRun(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)

	// Wait for the wave to settle: five done, one failed
	waitFor(t, 2*time.Second, func() bool {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return false
		}
		terminal := 0
		for _, job := range snap.Jobs {
			if job.Status.IsTerminal() {
				terminal++
			}
		}
		return terminal == len(snap.Jobs)
	}, "Timed out waiting for dispatch wave to settle")

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusError, snap.Jobs["1970s"].Status)
	assert.Equal(t, "the model was temporarily unavailable", snap.Jobs["1970s"].ErrorMessage)
	for _, era := range run.Eras {
		if era == "1970s" {
			continue
		}
		assert.Equal(t, domain.JobStatusDone, snap.Jobs[era].Status, "job %s should be done", era)
	}

	// The aggregation gate stays closed and names the failed era
	complete, err := s.IsComplete(ctx)
	require.NoError(t, err)
	assert.False(t, complete)
	_, err = s.CompletedResults(ctx)
	assert.ErrorIs(t, err, ErrRunNotReady)
	assert.Contains(t, err.Error(), "1970s")

	// Retry recovers the failed job without touching the others
	runID, err := s.Retry(ctx, "1970s")
	require.NoError(t, err)
	assert.Equal(t, run.ID, runID)

	waitFor(t, 2*time.Second, func() bool {
		complete, err := s.IsComplete(ctx)
		return err == nil && complete
	}, "Timed out waiting for retry to complete")

	results, err := s.CompletedResults(ctx)
	require.NoError(t, err)
	assert.Len(t, results, len(run.Eras))

	mu.Lock()
	assert.Equal(t, 2, attempts["1970s"])
	mu.Unlock()
}

func TestSchedulerRetryGuards(t *testing.T) {
	arrivals := make(chan string, 12)
	release := make(chan struct{})
	transformer := &generation.MockTransformer{
		TransformFn: func(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error) {
			arrivals <- era
			select {
			case <-release:
				return testResult(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	s := newTestScheduler(t, transformer)
	ctx := context.Background()

	_, err := s.StartRun(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)

	// Two jobs go in flight; the rest stay queued
	inFlight := make(map[string]bool, 2)
	for i := 0; i < 2; i++ {
		select {
		case era := <-arrivals:
			inFlight[era] = true
		case <-time.After(500 * time.Millisecond):
			t.Fatal("Timed out waiting for model calls to start")
		}
	}

	// A queued job cannot be retried: it will be dispatched by the pool
	var pendingEra string
	for _, era := range []string{"1950s", "1960s", "1970s", "1980s", "1990s", "2000s"} {
		if !inFlight[era] {
			pendingEra = era
			break
		}
	}
	_, err = s.Retry(ctx, pendingEra)
	assert.ErrorIs(t, err, ErrJobNotDispatched)

	// An in-flight job cannot be retried either
	for era := range inFlight {
		_, err = s.Retry(ctx, era)
		assert.ErrorIs(t, err, ErrJobInFlight)
		break
	}

	// An era outside the run is rejected
	_, err = s.Retry(ctx, "1850s")
	assert.ErrorIs(t, err, ErrJobNotFound)

	close(release)
	waitFor(t, 2*time.Second, func() bool {
		complete, err := s.IsComplete(ctx)
		return err == nil && complete
	}, "Timed out waiting for run to complete")

	// A finished job may be retried to regenerate its artifact
	runID, err := s.Retry(ctx, "1950s")
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool {
		snap, err := s.Snapshot(ctx)
		return err == nil && snap.ID == runID && snap.Jobs["1950s"].Status == domain.JobStatusDone
	}, "Timed out waiting for regeneration to complete")
}

func TestSchedulerRetryWithoutRun(t *testing.T) {
	s := newTestScheduler(t, &generation.MockTransformer{})

	_, err := s.Retry(context.Background(), "1950s")
	assert.ErrorIs(t, err, ErrNoActiveRun)
}

func TestSchedulerReplaceCancelsPreviousRun(t *testing.T) {
	blockCh := make(chan struct{})
	started := make(chan string, 12)
	transformer := &generation.MockTransformer{
		TransformFn: func(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error) {
			started <- era
			select {
			case <-blockCh:
				return testResult(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	s := newTestScheduler(t, transformer)
	ctx := context.Background()

	first, err := s.StartRun(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)

	// Let the first run get jobs in flight
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(500 * time.Millisecond):
			t.Fatal("Timed out waiting for first run to start dispatching")
		}
	}

	second, err := s.StartRun(ctx, domain.DirectionFuture, testInput())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// Unblock everything; first-run results must be dropped as stale
	close(blockCh)
	waitFor(t, 2*time.Second, func() bool {
		complete, err := s.IsComplete(ctx)
		return err == nil && complete
	}, "Timed out waiting for replacement run to complete")

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, snap.ID)
	assert.Equal(t, domain.DirectionFuture, snap.Direction)
	assert.Len(t, snap.Jobs, 6)
	for era, job := range snap.Jobs {
		assert.Equal(t, domain.JobStatusDone, job.Status, "job %s should be done", era)
	}
}

func TestSchedulerEmitsLifecycleEvents(t *testing.T) {
	transformer := &generation.MockTransformer{}
	s, handler := newTestSchedulerWithEvents(t, transformer)
	ctx := context.Background()

	run, err := s.StartRun(ctx, domain.DirectionFuture, testInput())
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool {
		return len(handler.recorded()) == 2*len(run.Eras)
	}, "Timed out waiting for lifecycle events")

	// Every job emits in_progress then done, tagged with the run ID
	perEra := make(map[string][]string)
	for _, event := range handler.recorded() {
		assert.Equal(t, run.ID, event.RunID)
		perEra[event.Era] = append(perEra[event.Era], event.Status)
	}
	for _, era := range run.Eras {
		assert.Equal(t, []string{"in_progress", "done"}, perEra[era], "events for %s", era)
	}
}

func TestSchedulerReset(t *testing.T) {
	transformer := &generation.MockTransformer{}
	s := newTestScheduler(t, transformer)
	ctx := context.Background()

	_, err := s.StartRun(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool {
		complete, err := s.IsComplete(ctx)
		return err == nil && complete
	}, "Timed out waiting for run to complete")

	s.Reset(ctx)

	_, err = s.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrNoActiveRun)
	_, err = s.Retry(ctx, "1950s")
	assert.ErrorIs(t, err, ErrNoActiveRun)
	_, err = s.IsComplete(ctx)
	assert.ErrorIs(t, err, ErrNoActiveRun)

	// A fresh run can be started after a reset
	run, err := s.StartRun(ctx, domain.DirectionFuture, testInput())
	require.NoError(t, err)
	waitFor(t, 2*time.Second, func() bool {
		complete, err := s.IsComplete(ctx)
		return err == nil && complete
	}, "Timed out waiting for post-reset run to complete")

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, snap.ID)
}

func TestSchedulerStopUnblocksInFlightWork(t *testing.T) {
	started := make(chan struct{}, 12)
	transformer := &generation.MockTransformer{
		TransformFn: func(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error) {
			started <- struct{}{}
			<-ctx.Done() // Model call ends only on cancellation
			return nil, ctx.Err()
		},
	}

	logger := setupTestLogger()
	emitter := events.NewInMemoryEventEmitter(logger)
	s, err := New(transformer, emitter, DefaultWorkerPoolConfig(), logger)
	require.NoError(t, err)

	_, err = s.StartRun(context.Background(), domain.DirectionPast, testInput())
	require.NoError(t, err)

	select {
	case <-started:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timed out waiting for model call to start")
	}

	stopDone := make(chan struct{})
	go func() {
		s.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for scheduler to stop")
	}
}
