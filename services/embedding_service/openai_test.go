package embedding_service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sdiallo/docqa/services/embedding_service"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, nil))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestEmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}

		w.Header().Set("Content-Type", "application/json")
		// Vectors deliberately out of order to exercise index placement.
		fmt.Fprintf(w, `{
			"data": [
				{"index": 1, "embedding": [0.0, 1.0]},
				{"index": 0, "embedding": [1.0, 0.0]}
			],
			"usage": {"total_tokens": 7}
		}`)
	}))
	defer server.Close()

	embedder, err := embedding_service.NewOpenAIEmbedder(embedding_service.Config{
		APIURL:    server.URL,
		APIKey:    "dummy-key",
		Model:     "test-model",
		Dimension: 2,
	}, newTestLogger())
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := embedder.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if vectors[0][0] != 1.0 || vectors[1][1] != 1.0 {
		t.Errorf("vectors not placed by index: %v", vectors)
	}
}

func TestEmbedBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	embedder, err := embedding_service.NewOpenAIEmbedder(embedding_service.Config{
		APIURL:    server.URL,
		APIKey:    "dummy-key",
		Model:     "test-model",
		Dimension: 2,
	}, newTestLogger())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := embedder.Embed(context.Background(), "query"); err == nil {
		t.Fatal("expected error from failing backend")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := embedding_service.NewOpenAIEmbedder(embedding_service.Config{}, newTestLogger())
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}
