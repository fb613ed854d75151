package llm_service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type OpenAIService struct {
	httpClient  *http.Client
	logger      *slog.Logger
	apiURL      string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

type Config struct {
	APIURL      string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewOpenAIService(cfg Config, logger *slog.Logger) (*OpenAIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is not set")
	}
	return &OpenAIService{
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		logger:      logger,
		apiURL:      cfg.APIURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (s *OpenAIService) CallLLM(ctx context.Context, prompt string) (string, error) {
	maxRetries := 3
	retryDelay := 5 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		response, err := s.callOpenAI(ctx, prompt)
		if err == nil {
			return response, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if attempt == maxRetries {
			s.logger.Error("Error calling OpenAI API after multiple attempts",
				slog.Int("attempts", maxRetries),
				slog.String("error", err.Error()))
			return "", fmt.Errorf("failed to call OpenAI API after %d attempts: %w", maxRetries, err)
		}

		s.logger.Warn("Attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retryDelay", retryDelay),
			slog.String("error", err.Error()))
		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("failed to call OpenAI API after exhausting all retry attempts")
}

func (s *OpenAIService) callOpenAI(ctx context.Context, prompt string) (string, error) {
	resp, err := s.sendRequest(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("unexpected response format from OpenAI API")
	}

	return result.Choices[0].Message.Content, nil
}

// StreamLLM issues a streaming chat completion and forwards each content
// delta. The returned channel is closed once the API signals completion
// or an error chunk has been sent.
func (s *OpenAIService) StreamLLM(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	resp, err := s.sendRequest(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				return
			}

			var event struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
					FinishReason *string `json:"finish_reason"`
				} `json:"choices"`
			}
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				s.sendChunk(ctx, out, StreamChunk{Err: fmt.Errorf("malformed stream event: %w", err)})
				return
			}
			if len(event.Choices) == 0 {
				continue
			}
			if content := event.Choices[0].Delta.Content; content != "" {
				if !s.sendChunk(ctx, out, StreamChunk{Text: content}) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			s.sendChunk(ctx, out, StreamChunk{Err: fmt.Errorf("stream read failed: %w", err)})
		}
	}()

	return out, nil
}

func (s *OpenAIService) sendChunk(ctx context.Context, out chan<- StreamChunk, chunk StreamChunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *OpenAIService) sendRequest(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  s.maxTokens,
		"temperature": s.temperature,
		"stream":      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		httpErr := newHTTPError(resp)
		resp.Body.Close()
		return nil, httpErr
	}

	return resp, nil
}
