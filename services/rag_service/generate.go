package rag_service

import (
	"context"
	"io"
	"log/slog"

	"github.com/sdiallo/docqa/rag_type"
)

// GenerateResponse answers a question in one shot: retrieve, build the
// prompt, generate, and return answer + context + prompt together.
func (s *Service) GenerateResponse(ctx context.Context, query string, numChunks int) (*rag_type.RAGResponse, error) {
	results, err := s.Search(ctx, query, numChunks)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(query, results)

	answer, err := s.llm.CallLLM(ctx, prompt)
	if err != nil {
		return nil, &rag_type.BackendUnavailableError{Op: "generation", Err: err}
	}

	if results == nil {
		results = []rag_type.RetrievalResult{}
	}
	return &rag_type.RAGResponse{
		Answer:  answer,
		Context: results,
		Prompt:  prompt,
	}, nil
}

// GenerateStreamingResponse answers a question as an NDJSON frame stream
// written to w. Failures before the first frame are returned without
// writing anything, so the transport can still send a proper status
// code. A mid-stream generation failure emits an error frame in place of
// the terminal context frame and returns GenerationInterruptedError.
func (s *Service) GenerateStreamingResponse(ctx context.Context, query string, numChunks int, w io.Writer) error {
	results, err := s.Search(ctx, query, numChunks)
	if err != nil {
		return err
	}

	prompt := BuildPrompt(query, results)

	stream, err := s.llm.StreamLLM(ctx, prompt)
	if err != nil {
		return &rag_type.BackendUnavailableError{Op: "generation", Err: err}
	}

	sw := NewStreamWriter(w)
	for chunk := range stream {
		if chunk.Err != nil {
			genErr := &rag_type.GenerationInterruptedError{Err: chunk.Err}
			if werr := sw.WriteError(genErr.Error()); werr != nil {
				s.logger.Error("Failed to write stream error frame",
					slog.String("error", werr.Error()))
			}
			return genErr
		}
		if err := sw.WriteToken(chunk.Text); err != nil {
			// Consumer is gone; stop pulling from the generator. The
			// request context cancellation shuts the producer down.
			return err
		}
	}

	return sw.WriteContext(results)
}
