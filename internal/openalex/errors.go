package openalex

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the OpenAlex client.
var (
	// ErrRetriesExhausted indicates the retry budget was spent on retryable statuses.
	ErrRetriesExhausted = errors.New("OpenAlex retries exhausted")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with OpenAlex")

	// ErrInvalidResponse indicates an unexpected API response body.
	ErrInvalidResponse = errors.New("invalid response from OpenAlex")
)

// APIError represents a non-200 response from the OpenAlex API.
type APIError struct {
	StatusCode int
	URL        string
	Body       string // response body, truncated
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("OpenAlex API error (status %d) for %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("OpenAlex API error (status %d) for %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// retryableStatus reports whether a status code is worth retrying with backoff.
func retryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// bodySnippet truncates a response body for inclusion in errors.
func bodySnippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
