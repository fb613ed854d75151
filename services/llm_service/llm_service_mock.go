package llm_service

import (
	"context"
)

type MockLLMService struct {
	CallLLMFunc   func(ctx context.Context, prompt string) (string, error)
	StreamLLMFunc func(ctx context.Context, prompt string) (<-chan StreamChunk, error)
	// Tokens is streamed by the default StreamLLM implementation.
	Tokens []string
	// StreamErr, when set, is emitted after Tokens instead of a clean close.
	StreamErr error
}

func (m *MockLLMService) CallLLM(ctx context.Context, prompt string) (string, error) {
	if m.CallLLMFunc != nil {
		return m.CallLLMFunc(ctx, prompt)
	}
	return "mock response", nil
}

func (m *MockLLMService) StreamLLM(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	if m.StreamLLMFunc != nil {
		return m.StreamLLMFunc(ctx, prompt)
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for _, tok := range m.Tokens {
			select {
			case out <- StreamChunk{Text: tok}:
			case <-ctx.Done():
				return
			}
		}
		if m.StreamErr != nil {
			select {
			case out <- StreamChunk{Err: m.StreamErr}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}
