package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/eralens-api/internal/domain"
	"github.com/phrazzld/eralens-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRetryCoordinator(t *testing.T) {
	registry, _ := newTestRegistry(t)
	executor, err := NewExecutor(registry, &generation.MockTransformer{}, setupTestLogger())
	require.NoError(t, err)
	logger := setupTestLogger()

	coordinator, err := NewRetryCoordinator(registry, executor, logger)
	assert.NoError(t, err)
	assert.NotNil(t, coordinator)

	_, err = NewRetryCoordinator(nil, executor, logger)
	assert.Error(t, err)

	_, err = NewRetryCoordinator(registry, nil, logger)
	assert.Error(t, err)

	_, err = NewRetryCoordinator(registry, executor, nil)
	assert.Error(t, err)
}

func TestRetryCoordinatorRelaunchesFailedJob(t *testing.T) {
	transformer := &generation.MockTransformer{}
	registry, _ := newTestRegistry(t)
	executor, err := NewExecutor(registry, transformer, setupTestLogger())
	require.NoError(t, err)
	coordinator, err := NewRetryCoordinator(registry, executor, setupTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	run, err := registry.Initialize(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)
	era := run.Eras[0]

	// Seed a failed job
	require.NoError(t, registry.Begin(ctx, run.ID, era))
	require.NoError(t, registry.Fail(ctx, run.ID, era, "model refused"))

	runID, err := coordinator.Retry(ctx, ctx, era)
	require.NoError(t, err)
	assert.Equal(t, run.ID, runID)

	// The relaunch is asynchronous; Wait blocks until it settles
	done := make(chan struct{})
	go func() {
		coordinator.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for retry to settle")
	}

	snap, err := registry.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusDone, snap.Jobs[era].Status)

	// A rejected retry launches nothing
	_, err = coordinator.Retry(ctx, ctx, "1850s")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
