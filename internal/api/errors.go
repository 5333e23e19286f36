package api

import (
	"errors"
	"fmt"
)

// ErrNoBaseURL indicates the backend base URL was never configured. This is
// a fatal configuration error, never a retryable one.
var ErrNoBaseURL = errors.New("backend base URL is not configured (set COMPASS_API_BASE)")

// HTTPError means the backend was reachable but rejected the call.
type HTTPError struct {
	Status  int
	Body    string
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// RequestError means the call never produced an HTTP response: DNS or
// connection failure, or a timeout. Timeout is kept distinct so callers can
// report it separately from generic unreachability.
type RequestError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *RequestError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request to %s timed out: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Timeout
}

// IsTransient reports whether err is worth retrying on a read path:
// a timeout or a network-level failure. HTTP rejections and configuration
// errors are not transient.
func IsTransient(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == status
}
