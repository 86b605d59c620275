package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/eralens-api/internal/domain"
)

// Common request/response structures

// CreateRunRequest defines the form fields for the run creation endpoint.
// The source image arrives as a separate multipart file part and is read
// by shared.ReadImageUpload rather than bound here.
type CreateRunRequest struct {
	Direction string `json:"direction" validate:"required,oneof=past future"`
}

// JobResponse describes one era job of a run. The result payload itself is
// never inlined; clients learn whether a result exists and fetch the
// composed page once the run is complete.
type JobResponse struct {
	Era          string    `json:"era"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	HasResult    bool      `json:"has_result"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RunResponse describes a run snapshot. Jobs are listed in the direction's
// era presentation order, not in map iteration order.
type RunResponse struct {
	// ID is the unique identifier for this run
	ID uuid.UUID `json:"id"`

	// Direction is the temporal direction of the run, past or future
	Direction string `json:"direction"`

	// Complete is true once every job reached the done status
	Complete bool `json:"complete"`

	// InputBytes and InputMIMEType echo the uploaded source image without
	// repeating its payload
	InputBytes    int    `json:"input_bytes"`
	InputMIMEType string `json:"input_mime_type"`

	Jobs []JobResponse `json:"jobs"`

	CreatedAt time.Time `json:"created_at"`
}

// runToResponse converts a domain run snapshot into its API representation.
func runToResponse(run *domain.Run) RunResponse {
	jobs := make([]JobResponse, 0, len(run.Eras))
	for _, era := range run.Eras {
		job, ok := run.Job(era)
		if !ok {
			continue
		}
		jobs = append(jobs, JobResponse{
			Era:          job.Era,
			Status:       string(job.Status),
			ErrorMessage: job.ErrorMessage,
			HasResult:    job.Result != nil,
			UpdatedAt:    job.UpdatedAt,
		})
	}

	return RunResponse{
		ID:            run.ID,
		Direction:     string(run.Direction),
		Complete:      run.Complete(),
		InputBytes:    len(run.Input.Data),
		InputMIMEType: run.Input.MIMEType,
		Jobs:          jobs,
		CreatedAt:     run.CreatedAt,
	}
}
