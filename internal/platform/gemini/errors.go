package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyPrompt is returned when the era prompt is empty.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptySourceImage is returned when the source photograph has no data.
	ErrEmptySourceImage = errors.New("source image cannot be empty")
)
