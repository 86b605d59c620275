package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/phrazzld/eralens-api/internal/config"
	"github.com/phrazzld/eralens-api/internal/domain"
	"github.com/phrazzld/eralens-api/internal/generation"
	"google.golang.org/genai"
)

// generateFunc matches the genai Models.GenerateContent method. It exists so
// tests can substitute canned responses without a live API client.
type generateFunc func(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error)

// GeminiTransformer implements the generation.Transformer interface using
// Google's Gemini API to restyle a photograph into a given era.
type GeminiTransformer struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string

	// generate performs the actual API call
	generate generateFunc
}

// Statically verify interface compliance.
var _ generation.Transformer = (*GeminiTransformer)(nil)

// NewGeminiTransformer creates a new instance of GeminiTransformer with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - config: LLM configuration containing API key, model name, and retry settings
//
// Returns:
//   - A properly initialized GeminiTransformer or an error if initialization fails
func NewGeminiTransformer(
	ctx context.Context,
	logger *slog.Logger,
	config config.LLMConfig,
) (*GeminiTransformer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	// Validate configuration
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if config.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	// Initialize the Gemini client
	clientConfig := &genai.ClientConfig{
		APIKey:  config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	transformer := &GeminiTransformer{
		logger:   logger.With("component", "gemini_transformer"),
		config:   config,
		client:   client,
		model:    config.ModelName,
		generate: client.Models.GenerateContent,
	}

	return transformer, nil
}

// Transform produces an era rendition of the source photograph.
//
// It packages the prompt and the source image into a single multimodal
// request, calls the Gemini API with retry for transient failures, and
// returns the generated image bytes.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - source: The source photograph shared by every job in the run
//   - prompt: The full era prompt text
//   - era: The era label, used for logging only
//
// Returns:
//   - A domain.ImageResult holding the rendered image
//   - An error if the transformation fails for any reason
func (g *GeminiTransformer) Transform(
	ctx context.Context,
	source domain.ImageInput,
	prompt, era string,
) (*domain.ImageResult, error) {
	// Validate input
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if len(source.Data) == 0 {
		return nil, ErrEmptySourceImage
	}

	g.logger.DebugContext(ctx, "starting image transformation",
		"era", era,
		"prompt_length", len(prompt),
		"source_bytes", len(source.Data),
		"source_mime_type", source.MIMEType)

	// Package the prompt and the photograph into one user turn. The image
	// travels inline; Gemini does not need a file upload for payloads of
	// this size.
	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{
				MIMEType: source.MIMEType,
				Data:     source.Data,
			}},
		},
	}}

	result, err := g.callGeminiWithRetry(ctx, contents, era)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "image transformation complete",
		"era", era,
		"result_bytes", len(result.Data),
		"result_mime_type", result.MIMEType)

	return result, nil
}

// callGeminiWithRetry makes a call to the Gemini API with exponential backoff retry logic.
//
// It attempts the call up to config.MaxRetries additional times, using
// exponential backoff with jitter between retries for transient errors.
// Permanent errors (like content being blocked by safety filters) are
// returned immediately without retrying.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation and logging
//   - contents: The assembled multimodal request
//   - era: The era label for logging
//
// Returns:
//   - The generated image extracted from the API response
//   - An error if all retries fail or if a permanent error occurs
func (g *GeminiTransformer) callGeminiWithRetry(
	ctx context.Context,
	contents []*genai.Content,
	era string,
) (*domain.ImageResult, error) {
	// Initialize retry variables
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	attempt := 0
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Validate retry configuration. Zero delay means retry immediately,
	// which tests rely on.
	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 2)
		maxRetries = 2
	}

	if baseDelaySeconds < 0 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	// Ask the model to answer with an image. Text may accompany it but is
	// ignored on extraction.
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	for attempt <= maxRetries {
		attemptNum := attempt + 1 // For logging (1-based)
		g.logger.DebugContext(ctx, "making Gemini API call",
			"era", era,
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		resp, err := g.generate(ctx, g.model, contents, genConfig)

		var result *domain.ImageResult
		var isTransientError bool
		if err != nil {
			// Transport and server errors are assumed transient
			isTransientError = true
		} else {
			result, err = extractImage(resp)
			isTransientError = false
		}

		// If successful, return the result
		if err == nil {
			g.logger.DebugContext(ctx, "Gemini API call successful",
				"era", era,
				"attempt", attemptNum)
			return result, nil
		}

		// Log the error
		g.logger.WarnContext(ctx, "Gemini API call failed",
			"era", era,
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are returned immediately
		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		// Check if we've reached the max retries
		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "maximum retry attempts reached",
				"era", era,
				"max_retries", maxRetries)
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		// Only retry for transient errors
		if !isTransientError {
			return nil, err
		}

		// Calculate exponential backoff with jitter
		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5 // Between 0.5 and 1.0
		delaySeconds := backoffSeconds * jitterFactor
		delay := time.Duration(delaySeconds * float64(time.Second))

		g.logger.DebugContext(ctx, "retrying after delay",
			"era", era,
			"attempt", attemptNum,
			"delay_seconds", delaySeconds)

		// Wait for the delay or context cancellation
		select {
		case <-time.After(delay):
			// Continue to next retry
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"era", era,
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	// This should not be reached due to the check inside the loop,
	// but return an error just in case
	return nil, fmt.Errorf("%w: failed after %d attempts",
		generation.ErrTransientFailure, attempt)
}

// extractImage validates the API response and locates the inline image payload.
//
// It returns generation.ErrContentBlocked when the candidate was stopped by
// safety filters, and generation.ErrInvalidResponse when the response carries
// no usable image.
func extractImage(resp *genai.GenerateContentResponse) (*domain.ImageResult, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: generation stopped by safety filters", generation.ErrContentBlocked)
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	// The model may interleave commentary text with the image; take the
	// first inline image part.
	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}

		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			// Gemini image output is PNG unless stated otherwise
			mimeType = "image/png"
		}

		return &domain.ImageResult{
			Data:     part.InlineData.Data,
			MIMEType: mimeType,
		}, nil
	}

	return nil, fmt.Errorf("%w: response contains no image part", generation.ErrInvalidResponse)
}
