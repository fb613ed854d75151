package rag_type

import (
	"encoding/json"
	"time"
)

// Document is the unit of ingestion. It is created once when a file is
// uploaded and never mutated afterwards; re-uploading the same file
// replaces its chunks in the vector index under the same id.
type Document struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	DocType   string                 `json:"doc_type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// DocumentInfo identifies the document a retrieved chunk came from.
type DocumentInfo struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	DocType    string `json:"doc_type"`
	ChunkIndex int    `json:"chunk_index"`
}

// RetrievalResult is one ranked hit for a query. Score is a similarity
// in [0,1] where 1.0 is an identical match. Lists of RetrievalResult are
// always ordered best-first and must not be reordered downstream.
type RetrievalResult struct {
	DocumentInfo DocumentInfo `json:"document_info"`
	Score        float64      `json:"score"`
	Snippet      string       `json:"snippet,omitempty"`
}

// RAGResponse is the non-streaming answer payload.
type RAGResponse struct {
	Answer  string            `json:"answer"`
	Context []RetrievalResult `json:"context"`
	Prompt  string            `json:"prompt"`
}

// StreamFrame is one line of a streaming answer. Token frames carry
// Finished=false; the single terminal frame carries the retrieval
// context and Finished=true. A frame with Error set signals that
// generation failed mid-stream and the normal terminal frame will not
// follow.
type StreamFrame struct {
	Token    string            `json:"token,omitempty"`
	Context  []RetrievalResult `json:"context,omitempty"`
	Error    string            `json:"error,omitempty"`
	Finished bool              `json:"finished"`
}

// MarshalJSON emits the wire shape for each frame kind. The terminal
// success frame always carries a context array, even when retrieval
// found nothing, so clients can key on its presence.
func (f StreamFrame) MarshalJSON() ([]byte, error) {
	switch {
	case f.Error != "":
		return json.Marshal(struct {
			Error    string `json:"error"`
			Finished bool   `json:"finished"`
		}{f.Error, f.Finished})
	case f.Finished:
		ctx := f.Context
		if ctx == nil {
			ctx = []RetrievalResult{}
		}
		return json.Marshal(struct {
			Context  []RetrievalResult `json:"context"`
			Finished bool              `json:"finished"`
		}{ctx, true})
	default:
		return json.Marshal(struct {
			Token    string `json:"token"`
			Finished bool   `json:"finished"`
		}{f.Token, false})
	}
}

// UploadResponse is returned after a successful document upload.
type UploadResponse struct {
	Message    string `json:"message"`
	Filename   string `json:"filename"`
	Size       int    `json:"size"`
	Path       string `json:"path"`
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}
