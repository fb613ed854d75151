package rag_service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/sdiallo/docqa/rag_type"
)

// Metadata keys the ingestion path always sets on a chunk. Document
// metadata never overrides them.
var reservedMetadataKeys = []string{"document_id", "title", "doc_type", "chunk_index"}

// Ingest chunks the document, embeds every chunk and inserts the chunk
// set into the vector index. It returns the number of chunks created;
// zero-length content is a valid outcome, not an error.
func (s *Service) Ingest(ctx context.Context, doc *rag_type.Document) (int, error) {
	chunks := s.chunker.Chunk(doc.Content)
	if len(chunks) == 0 {
		// A re-ingested document may have lost all its content; clear
		// whatever an earlier version left in the index.
		if err := s.index.DeleteByDocument(ctx, doc.ID); err != nil {
			return 0, err
		}
		s.logger.Info("Document has no content to index",
			slog.String("document_id", doc.ID))
		return 0, nil
	}

	embeddings := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for start := 0; start < len(chunks); start += embedBatchSize {
		start := start
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		g.Go(func() error {
			vectors, err := s.embedder.EmbedBatch(gctx, chunks[start:end])
			if err != nil {
				return err
			}
			copy(embeddings[start:end], vectors)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, &rag_type.BackendUnavailableError{Op: "embedding", Err: err}
	}

	metadatas := make([]map[string]interface{}, len(chunks))
	for i := range chunks {
		m := make(map[string]interface{}, len(doc.Metadata)+len(reservedMetadataKeys))
		for k, v := range doc.Metadata {
			m[k] = v
		}
		m["document_id"] = doc.ID
		m["title"] = doc.Title
		m["doc_type"] = doc.DocType
		m["chunk_index"] = i
		metadatas[i] = m
	}

	if err := s.index.Insert(ctx, doc.ID, chunks, embeddings, metadatas); err != nil {
		return 0, err
	}

	s.logger.Info("Document ingested",
		slog.String("document_id", doc.ID),
		slog.String("doc_type", doc.DocType),
		slog.Int("chunk_count", len(chunks)))
	return len(chunks), nil
}

// Search embeds the query and returns the top matching chunks as ranked
// RetrievalResults, best-first. An empty query or an out-of-range limit
// is a validation error, distinct from a query that matches nothing.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]rag_type.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, rag_type.NewValidationError("query cannot be empty")
	}
	if limit < 1 || limit > s.maxResults {
		return nil, rag_type.NewValidationError("limit must be between 1 and %d, got %d", s.maxResults, limit)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &rag_type.BackendUnavailableError{Op: "embedding", Err: err}
	}

	hits, err := s.index.Query(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}

	results := make([]rag_type.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, rag_type.RetrievalResult{
			DocumentInfo: documentInfoFromMetadata(hit.Metadata),
			Score:        hit.Score,
			Snippet:      truncate(hit.Text, snippetMaxLen),
		})
	}
	return results, nil
}

// DeleteDocument removes every chunk derived from the document.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return rag_type.NewValidationError("document id cannot be empty")
	}
	return s.index.DeleteByDocument(ctx, documentID)
}

func documentInfoFromMetadata(metadata map[string]interface{}) rag_type.DocumentInfo {
	info := rag_type.DocumentInfo{}
	if v, ok := metadata["document_id"].(string); ok {
		info.DocumentID = v
	}
	if v, ok := metadata["title"].(string); ok {
		info.Title = v
	}
	if v, ok := metadata["doc_type"].(string); ok {
		info.DocType = v
	}
	switch v := metadata["chunk_index"].(type) {
	case int:
		info.ChunkIndex = v
	case float64:
		// jsonb round-trips numbers as float64
		info.ChunkIndex = int(v)
	}
	return info
}

// truncate cuts on a rune boundary so a multi-byte character is never
// split into invalid UTF-8.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
