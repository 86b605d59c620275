package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrInvalidDirection is returned when a direction is neither past nor future.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrEmptyEra is returned when an era label is empty.
	ErrEmptyEra = errors.New("era label cannot be empty")

	// ErrEmptyImage is returned when an image payload has no data.
	ErrEmptyImage = errors.New("image payload cannot be empty")

	// ErrEmptyImageMIMEType is returned when an image payload has no MIME type.
	ErrEmptyImageMIMEType = errors.New("image MIME type cannot be empty")

	// ErrInvalidJobStatus is returned when a job status is not one of the
	// defined values.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrEmptyErrorMessage is returned when a job is failed without a message.
	ErrEmptyErrorMessage = errors.New("error message cannot be empty")

	// ErrNilResult is returned when a job is completed without a result.
	ErrNilResult = errors.New("result cannot be nil")

	// ErrUnexpectedResult is returned when a job carries a result while not done.
	ErrUnexpectedResult = errors.New("result populated outside done status")

	// ErrUnexpectedErrorMessage is returned when a job carries an error message
	// while not in error status.
	ErrUnexpectedErrorMessage = errors.New("error message populated outside error status")
)

// InvalidTransitionError reports an attempt to move a job along an edge that
// does not exist in the status graph.
type InvalidTransitionError struct {
	Era  string
	From JobStatus
	To   JobStatus
}

// Error implements the error interface for InvalidTransitionError.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("job %q cannot transition from %s to %s", e.Era, e.From, e.To)
}
