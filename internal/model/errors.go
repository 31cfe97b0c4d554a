package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

var (
	// ErrTransport marks failures to reach a site at all (DNS, connection, timeout).
	ErrTransport = errors.New("transport error")
	// ErrParse marks a response body that could not be read as a document.
	ErrParse = errors.New("parse error")
	// ErrEmbedding marks a failure computing or comparing an embedding.
	ErrEmbedding = errors.New("embedding failure")
	// ErrInvalidQuery is returned by SearchQuery.Validate.
	ErrInvalidQuery = errors.New("invalid search query")
)

// HTTPError wraps a non-2xx status code from an upstream site.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ErrorKind names the failure class of err for logs and metrics labels.
func ErrorKind(err error) string {
	var httpErr *HTTPError
	var netErr net.Error
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &httpErr):
		return "upstream_rejection"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrEmbedding):
		return "embedding"
	default:
		return "transport"
	}
}
