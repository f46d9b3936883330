package domain

import (
	"errors"
	"fmt"
)

// Application error codes
const (
	EINVALID      = "invalid"      // Invalid input or validation failure
	EUNAUTHORIZED = "unauthorized" // Authentication required
	EFORBIDDEN    = "forbidden"    // Permission denied
	ENOTFOUND     = "not_found"    // Resource not found
	ECONFLICT     = "conflict"     // Resource conflict (e.g., duplicate)
	ETOOLARGE     = "too_large"    // Request entity too large
	ERATELIMIT    = "rate_limit"   // Rate limit exceeded
	EMETHOD       = "method"       // HTTP method not allowed on the resource
	EINTERNAL     = "internal"     // Internal server error
)

// genericInternalMessage replaces internal error details in responses.
const genericInternalMessage = "An internal error occurred. Please try again later."

// validationFailedMessage is the client-facing message of a ValidationError.
const validationFailedMessage = "Validation failed"

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "product.create")
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code, op, message string) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code clients see for err. Errors that are neither
// *Error nor *ValidationError are internal.
func ErrorCode(err error) string {
	code, _ := classify(err)
	return code
}

// ErrorMessage returns the message clients see for err. Internal errors never
// leak their details.
func ErrorMessage(err error) string {
	_, msg := classify(err)
	return msg
}

func classify(err error) (code, message string) {
	if err == nil {
		return "", ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return EINTERNAL, genericInternalMessage
		}
		return e.Code, e.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return EINVALID, validationFailedMessage
	}
	return EINTERNAL, genericInternalMessage
}

// ErrorOp returns the operation of the outermost *Error, if any.
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// NotFound reports a missing resource by id.
func NotFound(op, resource, id string) *Error {
	return Errorf(ENOTFOUND, op, "%s with ID %q not found", resource, id)
}

func Invalid(op, message string) *Error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

func Unauthorized(op, message string) *Error {
	return &Error{Code: EUNAUTHORIZED, Op: op, Message: message}
}

func Conflict(op, message string) *Error {
	return &Error{Code: ECONFLICT, Op: op, Message: message}
}

// Internal wraps an infrastructure failure. message is for logs only.
func Internal(err error, op, message string) *Error {
	return Wrap(err, EINTERNAL, op, message)
}

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e.Op == "" {
		return "validation failed"
	}
	return e.Op + ": validation failed"
}

// NewValidationError creates a ValidationError with a single field.
func NewValidationError(op, field, message string) *ValidationError {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}
