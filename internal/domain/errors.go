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
	ERATELIMIT    = "rate_limit"   // Usage limit exceeded
	EINTERNAL     = "internal"     // Internal server error
)

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "quota.check_limits")
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

// ErrorCode returns the code of the root error, or EINTERNAL if none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var qe *QuotaError
	if errors.As(err, &qe) {
		return ERATELIMIT
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		// For internal errors, return generic message
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}
	var qe *QuotaError
	if errors.As(err, &qe) {
		return qe.Error()
	}
	return "An internal error occurred. Please try again later."
}

// ErrorOp returns the operation of the root error, if any.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	var qe *QuotaError
	if errors.As(err, &qe) {
		return qe.Op
	}
	return ""
}

// Convenience constructors for common error types

// NotFound creates a not found error.
func NotFound(op, resource, id string) *Error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s %q not found", resource, id),
	}
}

// Invalid creates a validation error.
func Invalid(op, message string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Unauthorized creates an authentication error.
func Unauthorized(op, message string) *Error {
	return &Error{
		Code:    EUNAUTHORIZED,
		Op:      op,
		Message: message,
	}
}

// Forbidden creates a permission error.
func Forbidden(op, message string) *Error {
	return &Error{
		Code:    EFORBIDDEN,
		Op:      op,
		Message: message,
	}
}

// Conflict creates a conflict error.
func Conflict(op, message string) *Error {
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error, wrapping the underlying error.
func Internal(err error, op, message string) *Error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// QuotaDimension identifies which usage ceiling was exceeded.
type QuotaDimension string

const (
	QuotaDimensionWords  QuotaDimension = "words"
	QuotaDimensionFiles  QuotaDimension = "files"
	QuotaDimensionImages QuotaDimension = "images"
)

// QuotaError is returned when a requested operation would exceed the user's
// daily usage limits. It carries the limit and current usage so callers can
// render a helpful message.
type QuotaError struct {
	Op        string
	Dimension QuotaDimension
	Limit     int64
	Used      int64
}

func (e *QuotaError) Error() string {
	switch e.Dimension {
	case QuotaDimensionWords:
		return fmt.Sprintf("daily word limit exceeded (limit %d, used %d)", e.Limit, e.Used)
	case QuotaDimensionFiles:
		return fmt.Sprintf("daily file upload limit exceeded (limit %d, used %d)", e.Limit, e.Used)
	case QuotaDimensionImages:
		return "image upload is not included in the current subscription"
	default:
		return "usage limit exceeded"
	}
}

// QuotaExceeded creates a quota error for the given dimension.
func QuotaExceeded(op string, dimension QuotaDimension, limit, used int64) *QuotaError {
	return &QuotaError{
		Op:        op,
		Dimension: dimension,
		Limit:     limit,
		Used:      used,
	}
}
