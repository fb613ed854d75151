package embedding_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type OpenAIEmbedder struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiURL     string
	apiKey     string
	model      string
	dimension  int
}

type Config struct {
	APIURL    string
	APIKey    string
	Model     string
	Dimension int
}

func NewOpenAIEmbedder(cfg Config, logger *slog.Logger) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is not set")
	}
	return &OpenAIEmbedder{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimension:  cfg.Dimension,
	}, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requestBody, err := json.Marshal(embeddingRequest{Input: texts, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(body))
	}

	var embeddingResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %v", err)
	}

	if len(embeddingResp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d inputs",
			len(embeddingResp.Data), len(texts))
	}

	// The API is documented to preserve input order, but it also tags each
	// vector with its input index, so place by index.
	vectors := make([][]float32, len(texts))
	for _, d := range embeddingResp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding service returned out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	e.logger.Debug("Generated embeddings",
		slog.Int("input_count", len(texts)),
		slog.Int("total_tokens", embeddingResp.Usage.TotalTokens))

	return vectors, nil
}
