package gateway

import (
	"errors"
	"fmt"
)

// ConnectionFailed is the user-facing text of every NetworkError.
const ConnectionFailed = "connection failed"

// NetworkError means the API could not be reached or the response could not
// be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return ConnectionFailed }
func (e *NetworkError) Unwrap() error { return e.Err }

// Detail includes the underlying transport error, for logs.
func (e *NetworkError) Detail() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ConnectionFailed, e.Err)
}

// ApiError is a non-2xx answer. Message comes from the body's detail field
// when the server sent one.
type ApiError struct {
	Status  int
	Message string
}

func (e *ApiError) Error() string { return e.Message }

// IsAPIError reports whether err carries an ApiError with one of the given
// statuses, or any ApiError when none are given.
func IsAPIError(err error, statuses ...int) bool {
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		return false
	}
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if apiErr.Status == s {
			return true
		}
	}
	return false
}

// Message is the text to show the user for err.
func Message(err error) string {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return ConnectionFailed
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
