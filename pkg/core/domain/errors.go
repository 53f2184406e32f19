package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no link exists for the requested id.
	ErrNotFound = errors.New("link not found")

	// ErrValidation indicates a link is missing a required field or a field is too long.
	ErrValidation = errors.New("invalid link")
)

// UpstreamError reports a failed call to the external analytics API, either
// a transport failure (Err set) or a non-2xx reply.
type UpstreamError struct {
	StatusCode int
	Reason     string
	URL        string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	kind := "Unexpected Status"
	switch {
	case e.StatusCode >= 400 && e.StatusCode < 500:
		kind = "Client Error"
	case e.StatusCode >= 500 && e.StatusCode < 600:
		kind = "Server Error"
	}
	return fmt.Sprintf("%d %s: %s for url: %s", e.StatusCode, kind, e.Reason, e.URL)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
