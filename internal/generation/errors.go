package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrTransformFailed is returned when image transformation fails for any general reason
	ErrTransformFailed = errors.New("failed to transform image")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or carries no image
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during image transformation")

	// ErrInvalidConfig is returned when the transformer configuration is invalid
	ErrInvalidConfig = errors.New("invalid transformer configuration")
)
