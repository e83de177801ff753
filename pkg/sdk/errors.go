package sdk

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned by operations that need a signed-in principal when none is stored.
var ErrNoToken = errors.New("no session token")

// NetworkError reports that the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx response. Message is taken from the body's
// "message" or "error" field when present.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Message)
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode returns the HTTP status of a StatusError, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Describe turns a client error into the short text shown to a user.
func Describe(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if se != nil {
		return fmt.Sprintf("request failed with status %d", se.Code)
	}
	if IsNetwork(err) {
		return "Network Error"
	}
	return err.Error()
}
