package llm_service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OpenAIHttpError is returned for non-200 responses from the OpenAI API.
// Callers can inspect the status code via errors.As.
type OpenAIHttpError struct {
	StatusCode int
	Message    string
	ErrorType  string
	RawBody    string
}

func (e *OpenAIHttpError) Error() string {
	return fmt.Sprintf("OpenAI API error (HTTP %d): %s (Type: %s)", e.StatusCode, e.Message, e.ErrorType)
}

// newHTTPError drains the response body and pulls out the structured
// error detail when the body follows OpenAI's error envelope.
func newHTTPError(resp *http.Response) *OpenAIHttpError {
	httpErr := &OpenAIHttpError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return httpErr
	}
	httpErr.RawBody = string(body)

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		httpErr.Message = envelope.Error.Message
		httpErr.ErrorType = envelope.Error.Type
	}
	return httpErr
}
