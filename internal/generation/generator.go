package generation

import (
	"context"

	"github.com/phrazzld/eralens-api/internal/domain"
)

// Transformer defines the interface for restyling a source image into one era.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Transformer interface {
	// Transform produces an era rendition of the source image.
	// One call corresponds to one job dispatch; the implementation must not
	// write job state, only return the artifact or an error.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - source: The source image shared by every job in the run
	//   - prompt: The full prompt text derived via PromptFor
	//   - era: The era label, used for logging and tracing only
	//
	// Returns:
	//   - A domain.ImageResult holding the rendered image bytes
	//   - An error if the transformation fails for any reason (see errors.go for specific types)
	Transform(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error)
}
