package embedding_service

import (
	"context"
	"hash/fnv"
)

type MockEmbedder struct {
	EmbedFunc      func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)
	Dim            int
}

func (m *MockEmbedder) Dimension() int {
	if m.Dim != 0 {
		return m.Dim
	}
	return 8
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return hashVector(text, m.Dimension()), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedBatchFunc != nil {
		return m.EmbedBatchFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// hashVector derives a deterministic pseudo-embedding from the text, so
// identical texts embed identically and tests can rely on exact matches
// scoring highest.
func hashVector(text string, dim int) []float32 {
	v := make([]float32, dim)
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed%1000)/1000.0 - 0.5
	}
	return v
}
