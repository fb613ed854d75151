package llm_service_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sdiallo/docqa/services/llm_service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newService(t *testing.T, url string) *llm_service.OpenAIService {
	t.Helper()
	svc, err := llm_service.NewOpenAIService(llm_service.Config{
		APIURL:    url,
		APIKey:    "dummy-key",
		Model:     "test-model",
		MaxTokens: 64,
	}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestCallLLM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": [{"message": {"content": "the answer"}}]}`)
	}))
	defer server.Close()

	got, err := newService(t, server.URL).CallLLM(context.Background(), "question")
	if err != nil {
		t.Fatal(err)
	}
	if got != "the answer" {
		t.Errorf("CallLLM = %q, want %q", got, "the answer")
	}
}

func TestStreamLLMDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		events := []string{
			`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
			`data: {"choices":[{"delta":{"content":" world"}}]}`,
			`data: {"choices":[{"delta":{}}]}`,
			`data: [DONE]`,
		}
		for _, e := range events {
			fmt.Fprintf(w, "%s\n\n", e)
		}
	}))
	defer server.Close()

	stream, err := newService(t, server.URL).StreamLLM(context.Background(), "question")
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			t.Fatalf("unexpected stream error: %v", chunk.Err)
		}
		sb.WriteString(chunk.Text)
	}
	if sb.String() != "Hello world" {
		t.Errorf("reassembled stream = %q, want %q", sb.String(), "Hello world")
	}
}

func TestStreamLLMErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limited", "type": "rate_limit"}}`)
	}))
	defer server.Close()

	_, err := newService(t, server.URL).StreamLLM(context.Background(), "question")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	var httpErr *llm_service.OpenAIHttpError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error %T does not unwrap to OpenAIHttpError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", httpErr.StatusCode)
	}
}
