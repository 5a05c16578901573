package speech

import (
	"errors"
	"fmt"
)

// Common speech errors
var (
	// ErrUnknownEvent indicates an event the normalizer cannot classify
	ErrUnknownEvent = errors.New("unknown field stream event")

	// ErrNilField indicates an enter or format event without a field
	ErrNilField = errors.New("field event without a field")

	// ErrStackUnderflow indicates an exit event with no open field
	ErrStackUnderflow = errors.New("exit event with no open field")

	// ErrMissingRenderer indicates a speaker built without a required collaborator
	ErrMissingRenderer = errors.New("required renderer not configured")

	// ErrNilPosition indicates a query without a position
	ErrNilPosition = errors.New("no position to speak")
)

// Error represents a speech error with additional context
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode identifies specific error types
type ErrorCode string

const (
	// Invariant violations of the upstream stream contract
	CodeInvalidStream  ErrorCode = "INVALID_STREAM"
	CodeStackUnderflow ErrorCode = "STACK_UNDERFLOW"

	// Setup errors
	CodeMisconfigured ErrorCode = "MISCONFIGURED"

	// Position errors
	CodePositionFailure ErrorCode = "POSITION_FAILURE"
)

// NewError creates a new speech error with context
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	e.Context[key] = value
	return e
}

// IsFatal returns true if the error aborts the query. Every stream
// contract breach is fatal; nothing is recovered silently.
func (e *Error) IsFatal() bool {
	switch e.Code {
	case CodeInvalidStream, CodeStackUnderflow, CodeMisconfigured:
		return true
	default:
		return false
	}
}

// IsInvariantViolation reports whether err is a breach of the field stream
// contract.
func IsInvariantViolation(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == CodeInvalidStream || se.Code == CodeStackUnderflow
}
