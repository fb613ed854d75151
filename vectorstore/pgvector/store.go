package pgvector

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/sdiallo/docqa/rag_type"
	"github.com/sdiallo/docqa/vectorstore"
)

// Store persists chunks in Postgres with a pgvector embedding column.
// Similarity uses the cosine distance operator <=>, whose range is [0,2];
// the reported score is 1 - distance clamped to [0,1], so 1.0 means an
// identical embedding.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) Insert(ctx context.Context, documentID string, chunks []string, embeddings [][]float32, metadatas []map[string]interface{}) error {
	if len(chunks) != len(embeddings) || len(chunks) != len(metadatas) {
		return rag_type.NewValidationError(
			"chunks (%d), embeddings (%d) and metadatas (%d) must be parallel",
			len(chunks), len(embeddings), len(metadatas))
	}
	if len(chunks) == 0 {
		return s.DeleteByDocument(ctx, documentID)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &rag_type.BackendUnavailableError{Op: "vector store", Err: err}
	}
	defer tx.Rollback(ctx)

	// Replace the document's chunk set wholesale. The delete runs in the
	// same transaction, so a shrinking re-ingestion cannot leave stale
	// high-index chunks behind.
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM chunks WHERE document_id = $1`, documentID)
	for i := range chunks {
		metadata, err := json.Marshal(metadatas[i])
		if err != nil {
			return rag_type.NewValidationError("chunk %d metadata is not serializable: %v", i, err)
		}
		batch.Queue(`
			INSERT INTO chunks (id, document_id, content, embedding, metadata)
			VALUES ($1, $2, $3, $4, $5)`,
			vectorstore.ChunkID(documentID, i),
			documentID,
			chunks[i],
			pgv.NewVector(embeddings[i]),
			metadata)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return &rag_type.BackendUnavailableError{Op: "vector store", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return &rag_type.BackendUnavailableError{Op: "vector store", Err: err}
	}

	s.logger.Debug("Inserted chunks into vector store",
		slog.String("document_id", documentID),
		slog.Int("chunk_count", len(chunks)))
	return nil
}

func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]vectorstore.Hit, error) {
	if k <= 0 {
		return nil, rag_type.NewValidationError("k must be positive, got %d", k)
	}

	rows, err := s.db.Query(ctx, `
		SELECT content, metadata, 1 - (embedding <=> $1) AS score
		FROM chunks
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgv.NewVector(embedding), k)
	if err != nil {
		return nil, &rag_type.BackendUnavailableError{Op: "vector store", Err: err}
	}
	defer rows.Close()

	hits := make([]vectorstore.Hit, 0, k)
	for rows.Next() {
		var (
			content  string
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&content, &metadata, &score); err != nil {
			return nil, &rag_type.BackendUnavailableError{Op: "vector store", Err: err}
		}
		hit := vectorstore.Hit{Text: content, Score: clampScore(score)}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &hit.Metadata); err != nil {
				s.logger.Error("Failed to parse chunk metadata",
					slog.String("error", err.Error()))
			}
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, &rag_type.BackendUnavailableError{Op: "vector store", Err: err}
	}
	return hits, nil
}

func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return &rag_type.BackendUnavailableError{Op: "vector store", Err: err}
	}
	s.logger.Debug("Deleted document chunks",
		slog.String("document_id", documentID),
		slog.Int64("chunks_removed", tag.RowsAffected()))
	return nil
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
