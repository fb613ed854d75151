package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/sdiallo/docqa/rag_type"
	"github.com/sdiallo/docqa/vectorstore"
)

type entry struct {
	id        string
	docID     string
	text      string
	embedding []float32
	metadata  map[string]interface{}
}

// Store is a brute-force cosine-similarity index held in memory. It backs
// tests and the no-database development mode; the pgvector store is the
// production backend.
type Store struct {
	mu      sync.RWMutex
	entries []entry
}

func New() *Store {
	return &Store{}
}

func (s *Store) Insert(ctx context.Context, documentID string, chunks []string, embeddings [][]float32, metadatas []map[string]interface{}) error {
	if len(chunks) != len(embeddings) || len(chunks) != len(metadatas) {
		return rag_type.NewValidationError(
			"chunks (%d), embeddings (%d) and metadatas (%d) must be parallel",
			len(chunks), len(embeddings), len(metadatas))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Replace the document's chunk set wholesale so a shrinking
	// re-ingestion drops the old tail.
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.docID != documentID {
			kept = append(kept, e)
		}
	}
	s.entries = kept

	for i := range chunks {
		s.entries = append(s.entries, entry{
			id:        vectorstore.ChunkID(documentID, i),
			docID:     documentID,
			text:      chunks[i],
			embedding: embeddings[i],
			metadata:  metadatas[i],
		})
	}
	return nil
}

func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]vectorstore.Hit, error) {
	if k <= 0 {
		return nil, rag_type.NewValidationError("k must be positive, got %d", k)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]vectorstore.Hit, 0, len(s.entries))
	for _, e := range s.entries {
		hits = append(hits, vectorstore.Hit{
			Text:     e.text,
			Metadata: e.metadata,
			Score:    clampScore(cosine(embedding, e.embedding)),
		})
	}
	// Stable keeps insertion order among equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.docID != documentID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// Len reports the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
