package domain

import "time"

// JobStatus represents the lifecycle state of a single era job.
type JobStatus string

// Possible job status values
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
)

// IsTerminal reports whether the status ends a dispatch. Terminal statuses
// are not terminal for the job overall: a retry moves the job back to
// in_progress.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// isValidJobStatus checks if the given status is a defined JobStatus.
func isValidJobStatus(s JobStatus) bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusDone, JobStatusError:
		return true
	default:
		return false
	}
}

// CanTransition reports whether from→to is an edge of the status graph:
// pending→in_progress, in_progress→done, in_progress→error, and the retry
// edges done→in_progress and error→in_progress. Nothing else is legal.
func CanTransition(from, to JobStatus) bool {
	switch to {
	case JobStatusInProgress:
		return from == JobStatusPending || from.IsTerminal()
	case JobStatusDone, JobStatusError:
		return from == JobStatusInProgress
	default:
		return false
	}
}

// Job is one (input, era) transformation task with its own lifecycle.
// At most one of Result and ErrorMessage is populated, determined exactly
// by Status: Result only when done, ErrorMessage only when error.
type Job struct {
	Era          string       `json:"era"`
	Status       JobStatus    `json:"status"`
	Result       *ImageResult `json:"result,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewJob creates a pending job for the given era label.
func NewJob(era string) (*Job, error) {
	if era == "" {
		return nil, ErrEmptyEra
	}

	return &Job{
		Era:       era,
		Status:    JobStatusPending,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// MarkInProgress moves the job to in_progress, clearing any previous
// result or error message so a retried job never shows stale payloads.
// Legal from pending (first dispatch) and from done/error (retry).
func (j *Job) MarkInProgress() error {
	if !CanTransition(j.Status, JobStatusInProgress) {
		return &InvalidTransitionError{Era: j.Era, From: j.Status, To: JobStatusInProgress}
	}

	j.Status = JobStatusInProgress
	j.Result = nil
	j.ErrorMessage = ""
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkDone records a successful dispatch with its produced artifact.
// Legal only from in_progress.
func (j *Job) MarkDone(result *ImageResult) error {
	if !CanTransition(j.Status, JobStatusDone) {
		return &InvalidTransitionError{Era: j.Era, From: j.Status, To: JobStatusDone}
	}
	if err := result.Validate(); err != nil {
		return err
	}

	j.Status = JobStatusDone
	j.Result = result
	j.ErrorMessage = ""
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkError records a failed dispatch with a human-readable message.
// Legal only from in_progress.
func (j *Job) MarkError(message string) error {
	if !CanTransition(j.Status, JobStatusError) {
		return &InvalidTransitionError{Era: j.Era, From: j.Status, To: JobStatusError}
	}
	if message == "" {
		return ErrEmptyErrorMessage
	}

	j.Status = JobStatusError
	j.Result = nil
	j.ErrorMessage = message
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns an independent copy of the job. The Result pointer is
// duplicated but its Data slice is shared, since result bytes are
// immutable after the terminal write.
func (j *Job) Clone() *Job {
	c := *j
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	return &c
}

// Validate checks the job's internal consistency: a defined status and the
// payload populated for exactly that status.
func (j *Job) Validate() error {
	if j.Era == "" {
		return ErrEmptyEra
	}
	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}
	if j.Result != nil && j.Status != JobStatusDone {
		return ErrUnexpectedResult
	}
	if j.ErrorMessage != "" && j.Status != JobStatusError {
		return ErrUnexpectedErrorMessage
	}
	if j.Status == JobStatusDone {
		return j.Result.Validate()
	}
	if j.Status == JobStatusError && j.ErrorMessage == "" {
		return ErrEmptyErrorMessage
	}
	return nil
}
