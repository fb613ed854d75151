package rag_type

import "fmt"

// ValidationError marks malformed client input (empty query, out-of-range
// limit, unsupported file format). Handlers map it to a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a request for a document or file that does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// BackendUnavailableError wraps a failure of the embedding, vector store
// or generation backend. Callers never see the backend's own error types
// across a package boundary.
type BackendUnavailableError struct {
	Op  string
	Err error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Op, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Err
}

// GenerationInterruptedError marks a generation failure after streaming
// has started. The stream is closed with an explicit error frame instead
// of the normal terminal context frame.
type GenerationInterruptedError struct {
	Err error
}

func (e *GenerationInterruptedError) Error() string {
	return fmt.Sprintf("generation interrupted: %v", e.Err)
}

func (e *GenerationInterruptedError) Unwrap() error {
	return e.Err
}
