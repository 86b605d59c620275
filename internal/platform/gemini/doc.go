// Package gemini provides an implementation of the generation.Transformer interface
// that uses Google's Gemini API to reimagine photographs in different eras.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's domain logic to Google's external Gemini AI service.
// It translates between the application's domain models and the Gemini API
// without exposing the details of the external service to the core application.
//
// Key components:
//
// 1. GeminiTransformer:
//   - Implements the generation.Transformer interface
//   - Handles communication with the Gemini API
//   - Extracts generated image data from multimodal responses
//
// 2. Request Assembly:
//   - Packages the era prompt and the source photograph into a single
//     multimodal request
//   - Asks the model for image output via response modalities
//
// 3. Response Processing:
//   - Validates responses and locates the inline image payload
//   - Detects safety blocks and empty generations
//   - Converts API responses to domain ImageResult values
//
// 4. Error Handling:
//   - Implements retry logic with exponential backoff for transient errors
//   - Categorizes and translates API errors to application-specific errors
//
// The package depends on Google's genai client library for communicating
// with the Gemini API, and handles authentication, request formatting, and
// response processing according to Google's API specifications.
package gemini
