package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnexpectedStatus is wrapped by FetchError when the server answers with
// a status other than 200 OK.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// FetchError describes a failed page fetch.
// Use errors.As to inspect it and errors.Is to match its cause.
type FetchError struct {
	// URL is the page that was requested.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 && errors.Is(e.Err, ErrUnexpectedStatus) {
		return fmt.Sprintf("fetch %s: %s: %d %s", e.URL, e.Err, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the fetch could succeed: transport
// failures, 429 and 5xx responses. Cancellation is never temporary.
func (e *FetchError) Temporary() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}
