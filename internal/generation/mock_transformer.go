package generation

import (
	"context"
	"sync"

	"github.com/phrazzld/eralens-api/internal/domain"
)

// MockTransformer is a simple implementation of the Transformer interface for testing
type MockTransformer struct {
	// TransformFn is invoked for every call when set
	TransformFn func(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error)

	mu    sync.Mutex
	calls []TransformCall
}

// TransformCall records the arguments of one Transform invocation
type TransformCall struct {
	Era    string
	Prompt string
}

// Transform records the call and delegates to TransformFn when set.
// Without a TransformFn it returns a small placeholder artifact.
func (m *MockTransformer) Transform(ctx context.Context, source domain.ImageInput, prompt, era string) (*domain.ImageResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, TransformCall{Era: era, Prompt: prompt})
	m.mu.Unlock()

	if m.TransformFn != nil {
		return m.TransformFn(ctx, source, prompt, era)
	}
	return &domain.ImageResult{Data: []byte("mock-image-" + era), MIMEType: "image/png"}, nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockTransformer) Calls() []TransformCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]TransformCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Ensure MockTransformer implements Transformer
var _ Transformer = (*MockTransformer)(nil)
