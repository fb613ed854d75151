package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sdiallo/docqa/rag_type"
)

const defaultNumChunks = 3

// AskHandler answers questions over the indexed documents, either as a
// single JSON payload or as a newline-delimited JSON frame stream.
type AskHandler struct {
	rag    RAGService
	logger *slog.Logger
}

func NewAskHandler(rag RAGService, logger *slog.Logger) *AskHandler {
	return &AskHandler{rag: rag, logger: logger}
}

type askRequest struct {
	Query     string `json:"query"`
	NumChunks int    `json:"num_chunks"`
}

func (h *AskHandler) decodeRequest(r *http.Request) (*askRequest, error) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, rag_type.NewValidationError("invalid request body: %v", err)
	}
	if req.NumChunks == 0 {
		req.NumChunks = defaultNumChunks
	}
	return &req, nil
}

// Ask handles POST /rag/ask.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp, err := h.rag.GenerateResponse(r.Context(), req.Query, req.NumChunks)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// AskStream handles POST /rag/ask/stream. Each line of the response body
// is one complete JSON frame; the stream ends with a single finished:true
// frame or, on mid-generation failure, an error frame.
func (h *AskHandler) AskStream(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err = h.rag.GenerateStreamingResponse(r.Context(), req.Query, req.NumChunks, w)
	if err == nil {
		return
	}

	var gerr *rag_type.GenerationInterruptedError
	if errors.As(err, &gerr) {
		// The error frame is already on the wire.
		h.logger.Error("Generation interrupted mid-stream",
			slog.String("error", err.Error()))
		return
	}

	// Pre-stream failures (validation, unreachable backend) happen before
	// the first frame, so a regular error response still goes through.
	writeError(w, h.logger, err)
}
