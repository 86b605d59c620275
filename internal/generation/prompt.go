package generation

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/phrazzld/eralens-api/internal/domain"
)

// promptData carries the values substituted into a prompt template.
type promptData struct {
	Era string
}

// The two prompt templates are fixed product copy. The era label is the only
// substituted value and is embedded verbatim, so the prompt for a given
// (direction, era) pair is always the same string.
const (
	pastPromptTemplate = `Transform this photograph so it looks like it was taken in the {{.Era}}. ` +
		`Restyle the clothing, hairstyles, accessories, and surrounding environment to match the period ` +
		`while keeping the same person, pose, and composition. Render the result with the film grain, ` +
		`color palette, and print artifacts typical of {{.Era}} photography. Return only the transformed image.`

	futurePromptTemplate = `Transform this photograph to show the same scene in the {{.Era}} era of the future. ` +
		`Reimagine the clothing, technology, architecture, and atmosphere to match that speculative period ` +
		`while keeping the same person, pose, and composition. Render the result as a plausible photograph ` +
		`captured in that era. Return only the transformed image.`
)

var (
	pastPrompt   = template.Must(template.New("past").Parse(pastPromptTemplate))
	futurePrompt = template.Must(template.New("future").Parse(futurePromptTemplate))
)

// PromptFor derives the prompt text for one job. It is a pure function of
// direction and era: the same pair always yields the same prompt, so retries
// resend exactly what the original dispatch sent.
func PromptFor(direction domain.Direction, era string) (string, error) {
	if era == "" {
		return "", domain.ErrEmptyEra
	}

	var tmpl *template.Template
	switch direction {
	case domain.DirectionPast:
		tmpl = pastPrompt
	case domain.DirectionFuture:
		tmpl = futurePrompt
	default:
		return "", domain.ErrInvalidDirection
	}

	var promptBuffer bytes.Buffer
	if err := tmpl.Execute(&promptBuffer, promptData{Era: era}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return promptBuffer.String(), nil
}
