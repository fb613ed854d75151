package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sdiallo/docqa/rag_type"
)

// RAGService is the slice of the RAG pipeline the HTTP layer drives.
// *rag_service.Service implements it.
type RAGService interface {
	Ingest(ctx context.Context, doc *rag_type.Document) (int, error)
	Search(ctx context.Context, query string, limit int) ([]rag_type.RetrievalResult, error)
	GenerateResponse(ctx context.Context, query string, numChunks int) (*rag_type.RAGResponse, error)
	GenerateStreamingResponse(ctx context.Context, query string, numChunks int, w io.Writer) error
	DeleteDocument(ctx context.Context, documentID string) error
	MaxResults() int
}

// Extractor turns an uploaded file into text plus format metadata.
type Extractor interface {
	Extract(filename string, data []byte) (string, map[string]interface{}, error)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	var (
		verr *rag_type.ValidationError
		nerr *rag_type.NotFoundError
		berr *rag_type.BackendUnavailableError
		gerr *rag_type.GenerationInterruptedError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &nerr):
		return http.StatusNotFound
	case errors.As(err, &berr):
		return http.StatusServiceUnavailable
	case errors.As(err, &gerr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusForError(err)
	if status >= 500 {
		logger.Error("Request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
