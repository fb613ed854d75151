package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectAttempts = 10
	connectDelay    = 10 * time.Second
)

// Connect opens a pgxpool against DATABASE_URL, retrying while the
// database comes up, and makes sure the pgvector extension exists.
func Connect() (*pgxpool.Pool, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %v", err)
	}

	ctx := context.Background()
	var pool *pgxpool.Pool
	for i := 0; i < connectAttempts; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
			pool = nil
		}

		log.Printf("Failed to connect to the database (attempt %d/%d): %v", i+1, connectAttempts, err)
		if i < connectAttempts-1 {
			log.Printf("Retrying in %v...", connectDelay)
			time.Sleep(connectDelay)
		}
	}
	if pool == nil {
		return nil, fmt.Errorf("failed to connect to the database after %d attempts: %v", connectAttempts, err)
	}

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to create vector extension: %v", err)
	}

	return pool, nil
}

// EnsureSchema creates the chunks table if it is missing. The embedding
// column dimension must match the embedding model's output.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, embeddingDim int) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS chunks (
			id          text PRIMARY KEY,
			document_id text NOT NULL,
			content     text NOT NULL,
			embedding   vector(%d) NOT NULL,
			metadata    jsonb NOT NULL DEFAULT '{}'::jsonb
		)`, embeddingDim)

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("unable to create chunks table: %v", err)
	}

	_, err := pool.Exec(ctx,
		"CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks (document_id)")
	if err != nil {
		return fmt.Errorf("unable to create document_id index: %v", err)
	}
	return nil
}
