package rag_service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdiallo/docqa/rag_type"
	"github.com/sdiallo/docqa/services/embedding_service"
	"github.com/sdiallo/docqa/services/llm_service"
	"github.com/sdiallo/docqa/services/rag_service"
	"github.com/sdiallo/docqa/vectorstore/memory"
)

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

func newTestService(t *testing.T, store *memory.Store, llm llm_service.LLMService, opts rag_service.Options) *rag_service.Service {
	t.Helper()
	if opts.ChunkSize == 0 {
		opts.ChunkSize = 5
		opts.ChunkOverlap = 1
	}
	svc, err := rag_service.New(store, &embedding_service.MockEmbedder{}, llm, testLogger(), opts)
	require.NoError(t, err)
	return svc
}

func TestIngestChunkCountAndMetadata(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store, &llm_service.MockLLMService{}, rag_service.Options{
		ChunkSize: 5, ChunkOverlap: 1, MaxResults: 20,
	})

	// Twelve words, size=5 overlap=1: windows start at 0, 4, 8.
	doc := &rag_type.Document{
		ID:      "doc1",
		Title:   "report",
		Content: "one two three four five six seven eight nine ten eleven twelve",
		DocType: "txt",
		Metadata: map[string]interface{}{
			"author": "someone",
			// must not override the reserved key
			"document_id": "spoofed",
		},
	}

	count, err := svc.Ingest(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, store.Len())

	results, err := svc.Search(context.Background(), "three four five", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "doc1", r.DocumentInfo.DocumentID, "reserved keys win over document metadata")
		assert.Equal(t, "report", r.DocumentInfo.Title)
		assert.Equal(t, "txt", r.DocumentInfo.DocType)
	}
}

func TestIngestEmptyContent(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store, &llm_service.MockLLMService{}, rag_service.Options{})

	count, err := svc.Ingest(context.Background(), &rag_type.Document{ID: "empty", Content: "   "})
	require.NoError(t, err, "empty content is a valid outcome, not an error")
	assert.Zero(t, count)
	assert.Zero(t, store.Len())
}

func TestReingestShrinkingDocumentDropsStaleChunks(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store, &llm_service.MockLLMService{}, rag_service.Options{
		ChunkSize: 5, ChunkOverlap: 1, MaxResults: 20,
	})
	ctx := context.Background()

	doc := &rag_type.Document{ID: "doc1", Title: "report", DocType: "txt",
		Content: "one two three four five six seven eight nine ten eleven twelve"}
	count, err := svc.Ingest(ctx, doc)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	doc.Content = "one two three four"
	count, err = svc.Ingest(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, store.Len(), "chunks of the longer version must be gone")

	results, err := svc.Search(ctx, "nine ten eleven twelve", 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotContains(t, r.Snippet, "twelve", "stale text must not be retrievable")
	}
}

func TestReingestEmptyContentClearsDocument(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store, &llm_service.MockLLMService{}, rag_service.Options{})
	ctx := context.Background()

	doc := &rag_type.Document{ID: "doc1", Title: "report", DocType: "txt",
		Content: "alpha beta gamma delta epsilon zeta"}
	_, err := svc.Ingest(ctx, doc)
	require.NoError(t, err)
	require.NotZero(t, store.Len())

	doc.Content = ""
	count, err := svc.Ingest(ctx, doc)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, store.Len())
}

func TestSearchValidation(t *testing.T) {
	svc := newTestService(t, memory.New(), &llm_service.MockLLMService{}, rag_service.Options{MaxResults: 20})

	tests := []struct {
		name  string
		query string
		limit int
	}{
		{name: "empty query", query: "", limit: 3},
		{name: "whitespace query", query: "  \t ", limit: 3},
		{name: "zero limit", query: "q", limit: 0},
		{name: "negative limit", query: "q", limit: -2},
		{name: "limit above ceiling", query: "q", limit: 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.query, tt.limit)
			var verr *rag_type.ValidationError
			require.Error(t, err)
			assert.True(t, errors.As(err, &verr), "want ValidationError, got %T", err)
		})
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	svc := newTestService(t, memory.New(), &llm_service.MockLLMService{}, rag_service.Options{})

	results, err := svc.Search(context.Background(), "anything", 5)
	require.NoError(t, err, "empty index is not an error")
	assert.Empty(t, results)
}

func TestSearchRankingAndCap(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store, &llm_service.MockLLMService{}, rag_service.Options{
		ChunkSize: 5, ChunkOverlap: 1, MaxResults: 20,
	})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &rag_type.Document{
		ID:      "doc1",
		Title:   "doc1",
		DocType: "txt",
		Content: "one two three four five six seven eight nine ten eleven twelve",
	})
	require.NoError(t, err)

	results, err := svc.Search(ctx, "five six seven eight nine", 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 2)
	for i := 0; i < len(results)-1; i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
}

func TestDeleteDocumentCascade(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store, &llm_service.MockLLMService{}, rag_service.Options{})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &rag_type.Document{ID: "d1", Title: "d1", DocType: "txt",
		Content: "alpha beta gamma delta epsilon zeta"})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, &rag_type.Document{ID: "d2", Title: "d2", DocType: "txt",
		Content: "omega psi chi phi upsilon tau"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDocument(ctx, "d1"))

	results, err := svc.Search(ctx, "alpha beta gamma", 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "d1", r.DocumentInfo.DocumentID, "deleted document must not be retrievable")
	}
	found := false
	for _, r := range results {
		if r.DocumentInfo.DocumentID == "d2" {
			found = true
		}
	}
	assert.True(t, found, "other documents remain retrievable")
}

func TestGenerateResponse(t *testing.T) {
	store := memory.New()
	llm := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, "Question: what is alpha?") {
				t.Errorf("prompt does not carry the question:\n%s", prompt)
			}
			return "alpha is a letter", nil
		},
	}
	svc := newTestService(t, store, llm, rag_service.Options{})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &rag_type.Document{ID: "d1", Title: "d1", DocType: "txt",
		Content: "alpha beta gamma delta epsilon zeta"})
	require.NoError(t, err)

	resp, err := svc.GenerateResponse(ctx, "what is alpha?", 3)
	require.NoError(t, err)
	assert.Equal(t, "alpha is a letter", resp.Answer)
	assert.NotEmpty(t, resp.Context)
	assert.NotEmpty(t, resp.Prompt)
}

func TestGenerateResponseBackendFailure(t *testing.T) {
	llm := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("model unreachable")
		},
	}
	svc := newTestService(t, memory.New(), llm, rag_service.Options{})

	_, err := svc.GenerateResponse(context.Background(), "q", 3)
	var berr *rag_type.BackendUnavailableError
	require.Error(t, err)
	assert.True(t, errors.As(err, &berr), "want BackendUnavailableError, got %T", err)
}

func TestGenerateStreamingResponse(t *testing.T) {
	store := memory.New()
	llm := &llm_service.MockLLMService{Tokens: []string{"The", " answer", "."}}
	svc := newTestService(t, store, llm, rag_service.Options{})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &rag_type.Document{ID: "d1", Title: "d1", DocType: "txt",
		Content: "alpha beta gamma delta epsilon zeta"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.GenerateStreamingResponse(ctx, "what is alpha?", 2, &buf))

	frames := decodeFrames(t, buf.Bytes())
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.True(t, last.Finished)
	assert.NotEmpty(t, last.Context)

	var sb strings.Builder
	for _, f := range frames[:len(frames)-1] {
		assert.False(t, f.Finished)
		sb.WriteString(f.Token)
	}
	assert.Equal(t, "The answer.", sb.String())
}

func TestGenerateStreamingResponseInterrupted(t *testing.T) {
	llm := &llm_service.MockLLMService{
		Tokens:    []string{"partial"},
		StreamErr: errors.New("connection reset"),
	}
	svc := newTestService(t, memory.New(), llm, rag_service.Options{})

	var buf bytes.Buffer
	err := svc.GenerateStreamingResponse(context.Background(), "q", 2, &buf)
	var gerr *rag_type.GenerationInterruptedError
	require.Error(t, err)
	assert.True(t, errors.As(err, &gerr), "want GenerationInterruptedError, got %T", err)

	frames := decodeFrames(t, buf.Bytes())
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.NotEmpty(t, last.Error, "interruption must be visible on the wire")
	assert.Empty(t, last.Context, "normal context frame must not follow a failure")
}
