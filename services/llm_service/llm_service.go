package llm_service

import "context"

// StreamChunk is one increment of a streaming generation. A chunk with
// Err set terminates the stream; no further chunks follow it.
type StreamChunk struct {
	Text string
	Err  error
}

// LLMService generates text from a prompt. StreamLLM returns a finite,
// non-restartable sequence of increments; the channel is closed when
// generation is exhausted or fails. Abandoning the context stops the
// producer promptly.
type LLMService interface {
	CallLLM(ctx context.Context, prompt string) (string, error)
	StreamLLM(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}
