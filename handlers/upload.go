package handlers

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sdiallo/docqa/rag_type"
	"github.com/sdiallo/docqa/services/rag_service"
)

// UploadHandler accepts a multipart document upload, stores the raw file,
// extracts its text and ingests it into the vector index.
type UploadHandler struct {
	rag           RAGService
	extractor     Extractor
	logger        *slog.Logger
	uploadDir     string
	maxUploadSize int64
}

func NewUploadHandler(rag RAGService, extractor Extractor, logger *slog.Logger, uploadDir string, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{
		rag:           rag,
		extractor:     extractor,
		logger:        logger,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
	}
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Detail: "File size exceeds the maximum upload limit",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, rag_type.NewValidationError("missing file field in upload"))
		return
	}
	defer file.Close()

	safeFilename := filepath.Base(header.Filename)
	if safeFilename == "" || safeFilename == "." {
		writeError(w, h.logger, rag_type.NewValidationError("filename is required"))
		return
	}
	if !rag_service.IsSupportedFormat(safeFilename) {
		writeError(w, h.logger, rag_type.NewValidationError(
			"unsupported file format, supported formats: pdf, docx, txt, html"))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if len(content) == 0 {
		writeError(w, h.logger, rag_type.NewValidationError("empty file is not allowed"))
		return
	}

	text, metadata, err := h.extractor.Extract(safeFilename, content)
	if err != nil {
		h.logger.Error("Text extraction failed",
			slog.String("filename", safeFilename),
			slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	path := filepath.Join(h.uploadDir, safeFilename)
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now().UTC()
	doc := &rag_type.Document{
		ID:        DocumentID(safeFilename),
		Title:     rag_service.TitleFromFilename(safeFilename),
		Content:   text,
		DocType:   rag_service.DocTypeFromFilename(safeFilename),
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	chunkCount, err := h.rag.Ingest(r.Context(), doc)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("Document uploaded",
		slog.String("filename", safeFilename),
		slog.String("document_id", doc.ID),
		slog.Int("size", len(content)),
		slog.Int("chunk_count", chunkCount))

	writeJSON(w, http.StatusCreated, rag_type.UploadResponse{
		Message:    "Document uploaded successfully",
		Filename:   safeFilename,
		Size:       len(content),
		Path:       path,
		DocumentID: doc.ID,
		ChunkCount: chunkCount,
	})
}

// DocumentID derives a stable id from the stored filename, so uploading
// the same file again replaces its chunks instead of duplicating them.
func DocumentID(filename string) string {
	sum := sha1.Sum([]byte(filename))
	return hex.EncodeToString(sum[:])
}
