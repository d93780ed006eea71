package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned when the API replies with a success status
// but no extractable candidate text.
var ErrEmptyResponse = errors.New("gemini: no completion returned")

// APIError is a non-success HTTP response from the API, after the retry
// budget is exhausted for transient failures. Body is already redacted.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: API request failed with status %d: %s", e.Status, e.Body)
}

// Transient reports whether the failure is worth retrying: rate limits and
// server-side errors are, other client errors are not.
func (e *APIError) Transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// SizeLimitError is raised before dispatch when the serialized prompt
// exceeds the configured byte ceiling. It is a precondition failure, not a
// server-side one, and is never retried.
type SizeLimitError struct {
	Size  int
	Limit int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("gemini: prompt is %d bytes, exceeds limit of %d", e.Size, e.Limit)
}
