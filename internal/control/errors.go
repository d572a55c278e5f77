package control

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a failed call
type ErrorKind int

const (
	// ErrBadRequest means argument validation failed before any I/O
	ErrBadRequest ErrorKind = iota
	// ErrUnsupportedMethod means the device did not declare the method
	ErrUnsupportedMethod
	// ErrIO indicates a transport failure (dial, write or read)
	ErrIO
	// ErrParse means the response matched neither the result nor the error shape
	ErrParse
	// ErrSynchronization means the response id did not match the request id
	ErrSynchronization
	// ErrResponse means the device itself rejected the call
	ErrResponse
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrBadRequest:
		return "Bad Request"
	case ErrUnsupportedMethod:
		return "Unsupported Method"
	case ErrIO:
		return "IO Error"
	case ErrParse:
		return "Parse Error"
	case ErrSynchronization:
		return "Synchronization Error"
	case ErrResponse:
		return "Error Response"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// CallError is returned by every failed call
type CallError struct {
	Kind    ErrorKind // Category of error
	Method  string    // Wire name of the method (empty for dial errors)
	Message string    // Human-readable message; the device's own message for ErrResponse
	Code    int       // Device error code (ErrResponse only)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *CallError) Error() string {
	prefix := e.Kind.String()
	if e.Method != "" {
		prefix = fmt.Sprintf("%s: %s", prefix, e.Method)
	}

	switch {
	case e.Kind == ErrResponse:
		return fmt.Sprintf("%s: device error %d: %s", prefix, e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
}

// Unwrap returns the underlying error for error chain inspection
func (e *CallError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same call could succeed.
// Only transport failures qualify.
func (e *CallError) Retryable() bool {
	return e.Kind == ErrIO
}

func newBadRequest(format string, args ...any) *CallError {
	return &CallError{Kind: ErrBadRequest, Message: fmt.Sprintf(format, args...)}
}

func newIOError(method string, message string, err error) *CallError {
	return &CallError{Kind: ErrIO, Method: method, Message: message, Err: err}
}

func newParseError(method string, err error) *CallError {
	return &CallError{Kind: ErrParse, Method: method, Message: "malformed response", Err: err}
}

// KindOf returns the kind of a *CallError anywhere in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind, true
	}
	return 0, false
}

func isKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsBadRequest checks if an error is a validation error
func IsBadRequest(err error) bool {
	return isKind(err, ErrBadRequest)
}

// IsUnsupportedMethod checks if an error came from the capability gate
func IsUnsupportedMethod(err error) bool {
	return isKind(err, ErrUnsupportedMethod)
}

// IsIOError checks if an error is a transport error
func IsIOError(err error) bool {
	return isKind(err, ErrIO)
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	return isKind(err, ErrParse)
}

// IsSynchronizationError checks if an error is a correlation id mismatch
func IsSynchronizationError(err error) bool {
	return isKind(err, ErrSynchronization)
}

// IsErrorResponse checks if the device rejected the call
func IsErrorResponse(err error) bool {
	return isKind(err, ErrResponse)
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Retryable()
	}
	// Unknown errors are not retryable by default
	return false
}
