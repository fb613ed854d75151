package vectorstore

import (
	"context"
	"fmt"
)

// Hit is one nearest-neighbor match. Score is a normalized similarity in
// [0,1] where 1.0 is an identical match; each backend documents the
// transform it applies to its native distance metric.
type Hit struct {
	Text     string
	Metadata map[string]interface{}
	Score    float64
}

// Index stores (chunk text, embedding, metadata) triples grouped by
// document id. Chunk ids are deterministic ("{document_id}_chunk_{index}")
// and Insert replaces the document's entire chunk set, so re-ingesting a
// document never leaves chunks of the previous version behind, even when
// the new version is shorter.
//
// Implementations are safe for concurrent use; each Insert and
// DeleteByDocument call is atomic from the caller's perspective.
type Index interface {
	// Insert replaces the document's chunk set. chunks, embeddings and
	// metadatas are parallel slices; every metadata map must carry a
	// document_id key so scoped deletion works. An empty chunk set clears
	// the document from the index.
	Insert(ctx context.Context, documentID string, chunks []string, embeddings [][]float32, metadatas []map[string]interface{}) error

	// Query returns at most k hits ranked best-first. A k larger than the
	// number of stored chunks and a query against an empty index both
	// succeed, returning fewer (possibly zero) hits.
	Query(ctx context.Context, embedding []float32, k int) ([]Hit, error)

	// DeleteByDocument removes every chunk whose metadata document_id
	// matches, and nothing else. Deleting an unknown document is a no-op.
	DeleteByDocument(ctx context.Context, documentID string) error
}

// ChunkID builds the deterministic id under which a chunk is stored.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}
