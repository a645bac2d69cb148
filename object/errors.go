package object

import (
	"errors"
	"fmt"
)

// Code categorizes runtime errors.
type Code string

const (
	// CodeNoMemory indicates resource exhaustion during create or attach.
	// Always recoverable: no partial state survives a failed create.
	CodeNoMemory Code = "NO_MEMORY"

	// CodeNotFound indicates a context or collection lookup miss. This is
	// a normal query result, not an exceptional condition.
	CodeNotFound Code = "NOT_FOUND"

	// CodeTimedOut indicates a wait-lock acquire exceeded its deadline.
	CodeTimedOut Code = "TIMED_OUT"

	// CodeFailed indicates an unexpected provider-level error, such as a
	// lock primitive failing to initialize.
	CodeFailed Code = "FAILED"
)

// Error is the structured error returned by all fallible runtime operations.
// Failures are surfaced to the immediate caller; the engine performs no
// retries and no logging.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Err is the underlying provider error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying provider error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNoMemory reports whether err is an allocation-exhaustion error.
// Uses errors.As to handle wrapped errors.
func IsNoMemory(err error) bool {
	return hasCode(err, CodeNoMemory)
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsTimedOut reports whether err is an acquire timeout.
func IsTimedOut(err error) bool {
	return hasCode(err, CodeTimedOut)
}

// IsFailed reports whether err is a generic provider failure.
func IsFailed(err error) bool {
	return hasCode(err, CodeFailed)
}

func hasCode(err error, code Code) bool {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

func newNoMemoryError(message string, err error) *Error {
	return &Error{Code: CodeNoMemory, Message: message, Err: err}
}

func newNotFoundError(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func newTimedOutError(message string) *Error {
	return &Error{Code: CodeTimedOut, Message: message}
}

func newFailedError(message string, err error) *Error {
	return &Error{Code: CodeFailed, Message: message, Err: err}
}
