package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewJobStatusEvent(t *testing.T) {
	runID := uuid.New()

	// Create a new event
	event := NewJobStatusEvent(runID, "1950s", "done", "")

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, runID, event.RunID)
	assert.Equal(t, "1950s", event.Era)
	assert.Equal(t, "done", event.Status)
	assert.Empty(t, event.ErrorMessage)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, 2*time.Second)

	// Verify failure events carry the message
	failed := NewJobStatusEvent(runID, "1970s", "error", "model refused")
	assert.Equal(t, "error", failed.Status)
	assert.Equal(t, "model refused", failed.ErrorMessage)

	// Each event gets its own identity
	assert.NotEqual(t, event.ID, failed.ID)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *JobStatusEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *JobStatusEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	// Create a mock handler
	handler := &MockEventHandler{}

	// Create a test event
	event := NewJobStatusEvent(uuid.New(), "chrome-age", "in_progress", "")

	// Handle the event
	err := handler.HandleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	// Test error case
	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	err = handler.HandleEvent(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 2, handler.HandledCount)
}
