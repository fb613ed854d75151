package rag_service

import (
	"log/slog"

	"github.com/sdiallo/docqa/chunker"
	"github.com/sdiallo/docqa/services/embedding_service"
	"github.com/sdiallo/docqa/services/llm_service"
	"github.com/sdiallo/docqa/vectorstore"
)

// Default retrieval tuning; overridable through Options.
const (
	defaultMaxResults = 20
	snippetMaxLen     = 500
	embedBatchSize    = 32
	embedConcurrency  = 4
)

type Options struct {
	ChunkSize    int
	ChunkOverlap int
	MaxResults   int
}

// Service orchestrates the RAG pipeline: chunk + embed + index on the
// ingestion path, retrieve + prompt + generate on the query path. One
// Service is built at startup and shared by all requests; it holds no
// per-request state.
type Service struct {
	index      vectorstore.Index
	embedder   embedding_service.Embedder
	llm        llm_service.LLMService
	chunker    *chunker.Chunker
	logger     *slog.Logger
	maxResults int
}

func New(index vectorstore.Index, embedder embedding_service.Embedder, llm llm_service.LLMService, logger *slog.Logger, opts Options) (*Service, error) {
	c, err := chunker.New(opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Service{
		index:      index,
		embedder:   embedder,
		llm:        llm,
		chunker:    c,
		logger:     logger,
		maxResults: maxResults,
	}, nil
}

// MaxResults is the configured ceiling on the retrieval limit.
func (s *Service) MaxResults() int {
	return s.maxResults
}
