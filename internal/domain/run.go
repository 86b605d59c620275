package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run is one generation session: a source image, a direction, and one job
// per era in that direction's fixed set. A run is identified by ID so that
// late writes from a replaced run can be told apart from the active one.
type Run struct {
	ID        uuid.UUID       `json:"id"`
	Direction Direction       `json:"direction"`
	Eras      []string        `json:"eras"`
	Input     ImageInput      `json:"input"`
	Jobs      map[string]*Job `json:"jobs"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRun creates a run for the given direction with every era job pending.
// The job map keys are exactly the direction's era labels.
func NewRun(direction Direction, input ImageInput) (*Run, error) {
	eras, err := ErasFor(direction)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	jobs := make(map[string]*Job, len(eras))
	for _, era := range eras {
		job, err := NewJob(era)
		if err != nil {
			return nil, err
		}
		jobs[era] = job
	}

	return &Run{
		ID:        uuid.New(),
		Direction: direction,
		Eras:      eras,
		Input:     input,
		Jobs:      jobs,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Job returns the job for the given era label, or false when the era is not
// part of this run.
func (r *Run) Job(era string) (*Job, bool) {
	job, ok := r.Jobs[era]
	return job, ok
}

// Complete reports whether every job in the run is done. Jobs in error or
// still pending or in flight keep the run incomplete.
func (r *Run) Complete() bool {
	for _, job := range r.Jobs {
		if job.Status != JobStatusDone {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy of the run that callers may inspect without
// holding any lock. Image bytes are shared because they are immutable.
func (r *Run) Snapshot() *Run {
	c := *r
	c.Eras = make([]string, len(r.Eras))
	copy(c.Eras, r.Eras)
	c.Jobs = make(map[string]*Job, len(r.Jobs))
	for era, job := range r.Jobs {
		c.Jobs[era] = job.Clone()
	}
	return &c
}
