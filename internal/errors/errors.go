package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a diary error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrInvalidDateFormat  ErrorCode = "INVALID_DATE_FORMAT" // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrInternal           ErrorCode = "INTERNAL"            // 500
	ErrStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE" // 503
)

// DiaryError represents a structured error with code, status, and details.
type DiaryError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *DiaryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying storage or internal error, if any.
func (e *DiaryError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *DiaryError {
	return &DiaryError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidDateFormat creates a 400 error for a value that is not a YYYY-MM-DD date.
func NewInvalidDateFormat(value string) *DiaryError {
	return &DiaryError{
		Code:    ErrInvalidDateFormat,
		Status:  400,
		Message: fmt.Sprintf("invalid date %q: want YYYY-MM-DD", value),
		Details: map[string]any{"value": value},
	}
}

// NewNotFound creates a 404 error for a record id that does not exist.
func NewNotFound(id int64) *DiaryError {
	return &DiaryError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %d", id),
		Details: map[string]any{"id": id},
	}
}

// NewStorageUnavailable creates a 503 error for a durable backend that could
// not be opened, written or read during op.
func NewStorageUnavailable(op string, err error) *DiaryError {
	msg := "storage unavailable"
	if err != nil {
		msg = fmt.Sprintf("storage unavailable during %s: %v", op, err)
	}
	return &DiaryError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"operation": op},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message is generic; the original error is kept in Details for logging.
func NewInternal(err error) *DiaryError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &DiaryError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if err is (or wraps) a DiaryError with the given code.
func Is(err error, code ErrorCode) bool {
	var dErr *DiaryError
	if stderrors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
