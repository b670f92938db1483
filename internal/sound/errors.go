package sound

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyCompleted is returned when a completion is completed twice.
	ErrAlreadyCompleted = errors.New("completion already completed")
	// ErrClosed is reported for prepares issued after the module closed.
	ErrClosed = errors.New("sound module closed")
	// ErrReleased is reported when a player is released before it was ready.
	ErrReleased = errors.New("player released before it was ready")
)

// resourceNotFoundCode is the code the host expects for missing media.
const resourceNotFoundCode = -1

// ResourceError reports a locator that resolved to neither a stream nor a
// local file.
type ResourceError struct {
	Code    int
	Message string
	Locator string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Locator)
}

func newResourceNotFound(locator string) *ResourceError {
	return &ResourceError{
		Code:    resourceNotFoundCode,
		Message: "resource not found",
		Locator: locator,
	}
}

// BackendError reports a failure surfaced by the backend while preparing.
type BackendError struct {
	What string
	Err  error
}

func (e *BackendError) Error() string {
	return "backend: " + e.What
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func newBackendError(err error) *BackendError {
	what := "unknown error"
	if err != nil {
		what = err.Error()
	}
	return &BackendError{What: what, Err: err}
}
