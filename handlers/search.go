package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sdiallo/docqa/rag_type"
)

const defaultSearchLimit = 5

// SearchHandler exposes retrieval directly, without generation: ranked
// chunks with scores and snippets for a natural-language query.
type SearchHandler struct {
	rag    RAGService
	logger *slog.Logger
}

func NewSearchHandler(rag RAGService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{rag: rag, logger: logger}
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Results     []rag_type.RetrievalResult `json:"results"`
	Total       int                        `json:"total"`
	QueryTimeMs float64                    `json:"query_time_ms"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, rag_type.NewValidationError("invalid request body: %v", err))
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultSearchLimit
	}

	start := time.Now()
	results, err := h.rag.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if results == nil {
		results = []rag_type.RetrievalResult{}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:     results,
		Total:       len(results),
		QueryTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
	})
}
