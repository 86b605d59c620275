// Package generation provides interfaces and implementations for interacting
// with external AI/LLM services for image generation. It abstracts the
// details of LLM API integration (Gemini), allowing the application to restyle
// a source photograph into era renditions without coupling to specific
// external services. It also owns prompt derivation: the text sent to the
// model is a pure function of direction and era.
package generation
