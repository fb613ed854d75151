package embedding_service

import "context"

// Embedder maps text to a fixed-dimension float vector. Implementations
// are long-lived handles constructed once at process startup.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
