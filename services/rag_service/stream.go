package rag_service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sdiallo/docqa/rag_type"
)

// ErrStreamTerminated is returned when a frame is written after the
// stream has already emitted its terminal frame.
var ErrStreamTerminated = errors.New("stream already terminated")

// StreamWriter serializes one streaming answer as newline-delimited JSON
// frames: zero or more token frames followed by exactly one terminal
// frame (context on success, error on failure). Frames are flushed
// individually when the underlying writer supports it.
type StreamWriter struct {
	w          io.Writer
	flusher    http.Flusher
	terminated bool
}

func NewStreamWriter(w io.Writer) *StreamWriter {
	sw := &StreamWriter{w: w}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// WriteToken emits one token frame. Empty tokens are dropped rather than
// sent as empty frames.
func (sw *StreamWriter) WriteToken(token string) error {
	if sw.terminated {
		return ErrStreamTerminated
	}
	if token == "" {
		return nil
	}
	return sw.writeFrame(rag_type.StreamFrame{Token: token, Finished: false})
}

// WriteContext emits the single terminal frame carrying the ranked
// retrieval context, then closes the stream to further writes.
func (sw *StreamWriter) WriteContext(results []rag_type.RetrievalResult) error {
	if sw.terminated {
		return ErrStreamTerminated
	}
	sw.terminated = true
	if results == nil {
		results = []rag_type.RetrievalResult{}
	}
	return sw.writeFrame(rag_type.StreamFrame{Context: results, Finished: true})
}

// WriteError closes the stream with an explicit failure frame instead of
// the normal context frame, so consumers can tell an interrupted
// generation from a completed one.
func (sw *StreamWriter) WriteError(message string) error {
	if sw.terminated {
		return ErrStreamTerminated
	}
	sw.terminated = true
	return sw.writeFrame(rag_type.StreamFrame{Error: message, Finished: true})
}

func (sw *StreamWriter) writeFrame(frame rag_type.StreamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := sw.w.Write(data); err != nil {
		return err
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}
