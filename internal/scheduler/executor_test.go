package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/eralens-api/internal/domain"
	"github.com/phrazzld/eralens-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T, transformer generation.Transformer) (*Executor, *Registry) {
	t.Helper()

	registry, _ := newTestRegistry(t)
	executor, err := NewExecutor(registry, transformer, setupTestLogger())
	require.NoError(t, err)
	return executor, registry
}

func TestNewExecutor(t *testing.T) {
	registry, _ := newTestRegistry(t)
	transformer := &generation.MockTransformer{}
	logger := setupTestLogger()

	executor, err := NewExecutor(registry, transformer, logger)
	assert.NoError(t, err)
	assert.NotNil(t, executor)

	_, err = NewExecutor(nil, transformer, logger)
	assert.Error(t, err)

	_, err = NewExecutor(registry, nil, logger)
	assert.Error(t, err)

	_, err = NewExecutor(registry, transformer, nil)
	assert.Error(t, err)
}

func TestExecutorExecuteSuccess(t *testing.T) {
	transformer := &generation.MockTransformer{}
	executor, registry := newTestExecutor(t, transformer)
	ctx := context.Background()

	run, err := registry.Initialize(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)
	era := run.Eras[0]

	require.NoError(t, executor.Execute(ctx, run.ID, era))

	snap, err := registry.Snapshot(ctx)
	require.NoError(t, err)
	job := snap.Jobs[era]
	assert.Equal(t, domain.JobStatusDone, job.Status)
	require.NotNil(t, job.Result)
	assert.NotEmpty(t, job.Result.Data)
	assert.Empty(t, job.ErrorMessage)

	// The transformer received the prompt derived for the era
	calls := transformer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, era, calls[0].Era)
	assert.Contains(t, calls[0].Prompt, era)
}

func TestExecutorCommitsInProgressBeforeModelCall(t *testing.T) {
	var observed domain.JobStatus

	registry, _ := newTestRegistry(t)
	transformer := &generation.MockTransformer{}
	transformer.TransformFn = func(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error) {
		snap, err := registry.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		observed = snap.Jobs[era].Status
		return testResult(), nil
	}

	executor, err := NewExecutor(registry, transformer, setupTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	run, err := registry.Initialize(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)

	require.NoError(t, executor.Execute(ctx, run.ID, run.Eras[0]))
	assert.Equal(t, domain.JobStatusInProgress, observed)
}

func TestExecutorExecuteFailureIsIsolated(t *testing.T) {
	transformer := &generation.MockTransformer{
		TransformFn: func(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error) {
			return nil, fmt.Errorf("%w: candidate finished with safety", generation.ErrContentBlocked)
		},
	}
	executor, registry := newTestExecutor(t, transformer)
	ctx := context.Background()

	run, err := registry.Initialize(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)
	era := run.Eras[2]

	err = executor.Execute(ctx, run.ID, era)
	assert.ErrorIs(t, err, generation.ErrContentBlocked)

	snap, err := registry.Snapshot(ctx)
	require.NoError(t, err)

	// The failed job records a caller-facing message, not internals
	job := snap.Jobs[era]
	assert.Equal(t, domain.JobStatusError, job.Status)
	assert.Equal(t, "the model blocked this transformation for safety reasons", job.ErrorMessage)
	assert.Nil(t, job.Result)

	// Sibling jobs are untouched
	for _, sibling := range run.Eras {
		if sibling == era {
			continue
		}
		assert.Equal(t, domain.JobStatusPending, snap.Jobs[sibling].Status)
	}
}

func TestExecutorSkipsStaleRun(t *testing.T) {
	transformer := &generation.MockTransformer{}
	executor, registry := newTestExecutor(t, transformer)
	ctx := context.Background()

	run, err := registry.Initialize(ctx, domain.DirectionPast, testInput())
	require.NoError(t, err)

	// A dispatch carrying a superseded run ID never reaches the model
	err = executor.Execute(ctx, uuid.New(), run.Eras[0])
	assert.ErrorIs(t, err, ErrStaleRun)
	assert.Empty(t, transformer.Calls())

	snap, err := registry.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, snap.Jobs[run.Eras[0]].Status)
}

func TestExecutorRerunAfterFailure(t *testing.T) {
	failures := 0
	transformer := &generation.MockTransformer{
		TransformFn: func(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error) {
			if failures == 0 {
				failures++
				return nil, fmt.Errorf("%w: upstream timeout", generation.ErrTransientFailure)
			}
			return testResult(), nil
		},
	}
	executor, registry := newTestExecutor(t, transformer)
	ctx := context.Background()

	run, err := registry.Initialize(ctx, domain.DirectionFuture, testInput())
	require.NoError(t, err)
	era := run.Eras[0]

	// First dispatch fails
	err = executor.Execute(ctx, run.ID, era)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)

	// The retry path flips the status and reruns without a second Begin
	runID, err := registry.Restart(ctx, era)
	require.NoError(t, err)
	require.NoError(t, executor.Rerun(ctx, runID, era))

	snap, err := registry.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusDone, snap.Jobs[era].Status)
	assert.NotNil(t, snap.Jobs[era].Result)
	assert.Empty(t, snap.Jobs[era].ErrorMessage)
}

func TestTransformErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "content blocked",
			err:  fmt.Errorf("%w: finished with safety", generation.ErrContentBlocked),
			want: "the model blocked this transformation for safety reasons",
		},
		{
			name: "invalid response",
			err:  fmt.Errorf("%w: no image part", generation.ErrInvalidResponse),
			want: "the model returned no usable image",
		},
		{
			name: "transient failure",
			err:  fmt.Errorf("%w: exceeded maximum retry attempts (2)", generation.ErrTransientFailure),
			want: "the model was temporarily unavailable",
		},
		{
			name: "cancelled",
			err:  context.Canceled,
			want: "the transformation was cancelled",
		},
		{
			name: "unknown",
			err:  fmt.Errorf("boom"),
			want: "image transformation failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, transformErrorMessage(tc.err))
		})
	}
}
