package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/sdiallo/docqa/rag_type"
)

// DocumentHandler serves document info lookups and cascade deletion.
type DocumentHandler struct {
	rag       RAGService
	logger    *slog.Logger
	uploadDir string
}

func NewDocumentHandler(rag RAGService, logger *slog.Logger, uploadDir string) *DocumentHandler {
	return &DocumentHandler{rag: rag, logger: logger, uploadDir: uploadDir}
}

type documentInfoResponse struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Path       string `json:"path"`
	DocumentID string `json:"document_id"`
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(mux.Vars(r)["filename"])

	path := filepath.Join(h.uploadDir, filename)
	info, err := os.Stat(path)
	if err != nil {
		writeError(w, h.logger, &rag_type.NotFoundError{Resource: "document " + filename})
		return
	}

	writeJSON(w, http.StatusOK, documentInfoResponse{
		Filename:   filename,
		Size:       info.Size(),
		Path:       path,
		DocumentID: DocumentID(filename),
	})
}

// DeleteDocument removes the stored file and every chunk derived from it.
// The chunk deletion runs first so a half-completed request never leaves
// searchable chunks pointing at a missing file.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(mux.Vars(r)["filename"])

	path := filepath.Join(h.uploadDir, filename)
	if _, err := os.Stat(path); err != nil {
		writeError(w, h.logger, &rag_type.NotFoundError{Resource: "document " + filename})
		return
	}

	if err := h.rag.DeleteDocument(r.Context(), DocumentID(filename)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := os.Remove(path); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("Document deleted",
		slog.String("filename", filename))
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Document deleted successfully",
		"filename": filename,
	})
}
