package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusError represents a non-2xx response from a metadata provider.
type StatusError struct {
	Message    string
	StatusCode int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %v)", e.RetryAfter)
	}
	return msg
}

// NewStatusError builds a StatusError from a provider response. The
// Retry-After header is honoured for 429 and 503 responses when it holds a
// number of seconds.
func NewStatusError(resp *http.Response) *StatusError {
	var message string
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		message = "credentials rejected by provider"
	case resp.StatusCode == http.StatusTooManyRequests:
		message = "rate limited by provider"
	case resp.StatusCode >= 500:
		message = "provider unavailable"
	default:
		message = "unexpected response status"
	}

	e := &StatusError{Message: message, StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return e
}

// IsRateLimited reports whether err wraps a 429 response.
func IsRateLimited(err error) bool {
	var statusErr *StatusError
	return stdErrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests
}
