package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/negroni"

	"github.com/sdiallo/docqa/config"
	"github.com/sdiallo/docqa/db"
	"github.com/sdiallo/docqa/handlers"
	"github.com/sdiallo/docqa/logging"
	"github.com/sdiallo/docqa/server"
	"github.com/sdiallo/docqa/services/embedding_service"
	"github.com/sdiallo/docqa/services/llm_service"
	"github.com/sdiallo/docqa/services/rag_service"
	"github.com/sdiallo/docqa/vectorstore"
	"github.com/sdiallo/docqa/vectorstore/memory"
	"github.com/sdiallo/docqa/vectorstore/pgvector"
)

func main() {
	cfg := config.Load()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	index, err := initVectorIndex(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize vector index: %v", err)
	}

	embedder, err := embedding_service.NewOpenAIEmbedder(embedding_service.Config{
		APIURL:    cfg.EmbeddingAPIURL,
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.EmbeddingModel,
		Dimension: cfg.EmbeddingDimension,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}

	llm, err := llm_service.NewOpenAIService(llm_service.Config{
		APIURL:      cfg.LLMAPIURL,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.MaxNewTokens,
		Temperature: cfg.Temperature,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}

	ragService, err := rag_service.New(index, embedder, llm, logger, rag_service.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		MaxResults:   cfg.MaxResults,
	})
	if err != nil {
		log.Fatalf("Failed to initialize RAG service: %v", err)
	}

	extractor := rag_service.NewDocumentExtractor(logger)
	limiter := handlers.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	r := server.SetupRoutes(ragService, extractor, limiter, logger, cfg.UploadDir, cfg.MaxUploadSize)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, server.Config{
			Domains:      cfg.Domains,
			CertCacheDir: cfg.CertCacheDir,
			HTTPPort:     "80",
			HTTPSPort:    cfg.HTTPSPort,
		})
	} else {
		srv := &http.Server{
			Addr:        ":" + cfg.HTTPPort,
			Handler:     n,
			IdleTimeout: time.Minute,
			ReadTimeout: 5 * time.Second,
			// Streaming answers can take a while to finish.
			WriteTimeout: 5 * time.Minute,
		}
		server.ServeDevelopment(srv)
	}
}

func initLogger() (*slog.Logger, error) {
	handler, err := logging.NewDailyFileHandler("logs", "docqa", &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func initVectorIndex(cfg config.Config, logger *slog.Logger) (vectorstore.Index, error) {
	if cfg.VectorBackend == "memory" {
		logger.Warn("Using in-memory vector index; stored chunks will not survive a restart")
		return memory.New(), nil
	}

	pool, err := db.Connect()
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := db.EnsureSchema(ctx, pool, cfg.EmbeddingDimension); err != nil {
		return nil, err
	}
	if err := pgvector.NewIndexManager(pool, logger).ReindexIfNeeded(ctx); err != nil {
		// An unsized ANN index only degrades query speed, not correctness.
		logger.Warn("Failed to maintain ANN index", slog.String("error", err.Error()))
	}
	return pgvector.New(pool, logger), nil
}

func setupNegroni(r http.Handler) *negroni.Negroni {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.Use(server.RequestID())
	n.UseHandler(r)
	return n
}
