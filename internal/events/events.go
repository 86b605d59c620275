package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobStatusEvent represents a job status change within a run.
// It carries the status as a plain string so that handlers can observe
// scheduler progress without direct dependencies on the domain package.
type JobStatusEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// RunID identifies the run whose job changed
	RunID uuid.UUID `json:"run_id"`

	// Era is the label of the job that changed
	Era string `json:"era"`

	// Status is the job status after the change
	Status string `json:"status"`

	// ErrorMessage carries the failure message when Status is error
	ErrorMessage string `json:"error_message,omitempty"`

	// OccurredAt is the timestamp when the change was committed
	OccurredAt time.Time `json:"occurred_at"`
}

// NewJobStatusEvent creates a new JobStatusEvent for the given run and era.
func NewJobStatusEvent(runID uuid.UUID, era, status, errorMessage string) *JobStatusEvent {
	return &JobStatusEvent{
		ID:           uuid.New(),
		RunID:        runID,
		Era:          era,
		Status:       status,
		ErrorMessage: errorMessage,
		OccurredAt:   time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *JobStatusEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the scheduler to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *JobStatusEvent) error
}
