package tmdb

import (
	"errors"
	"fmt"
)

// UpstreamError is returned for any failed TMDB call: a non-2xx status, a
// transport failure or an undecodable body. It is never retried.
type UpstreamError struct {
	Op         string // "search" or "fetch"
	URL        string
	StatusCode int    // 0 when no response was received
	Message    string // provider's status_message, if any
	Err        error  // underlying transport or decode error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("tmdb %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("tmdb %s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("tmdb %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("tmdb %s: status %d", e.Op, e.StatusCode)
	}
}

// Unwrap returns the underlying error.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err is, or wraps, an *UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
