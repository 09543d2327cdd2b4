package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a linkgrab error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrFetchInProgress ErrorCode = "FETCH_IN_PROGRESS" // 409
	ErrCorruptState    ErrorCode = "CORRUPT_STATE"     // 500
	ErrInternal        ErrorCode = "INTERNAL"          // 500
	ErrFetchFailed     ErrorCode = "FETCH_FAILED"      // 502
)

// LinkError represents a structured error with code, status, and details.
type LinkError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *LinkError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid user input.
func NewInvalidRequest(msg string) *LinkError {
	return &LinkError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewFetchInProgress creates a 409 error for a fetch triggered while another is running.
func NewFetchInProgress() *LinkError {
	return &LinkError{
		Code:    ErrFetchInProgress,
		Status:  409,
		Message: "a fetch is already in progress",
	}
}

// NewFetchFailed creates a 502 error for transport failures and non-success responses.
func NewFetchFailed(url string, err error) *LinkError {
	msg := "fetch failed"
	if err != nil {
		msg = err.Error()
	}
	return &LinkError{
		Code:    ErrFetchFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"url": url},
		Err:     err,
	}
}

// NewCorruptState creates a 500 error for persisted data that cannot be decoded.
func NewCorruptState(key string, err error) *LinkError {
	msg := fmt.Sprintf("persisted %s is corrupt", key)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &LinkError{
		Code:    ErrCorruptState,
		Status:  500,
		Message: msg,
		Details: map[string]any{"key": key},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *LinkError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &LinkError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if an error is (or wraps) a LinkError with the given code.
func Is(err error, code ErrorCode) bool {
	var lErr *LinkError
	if stderrors.As(err, &lErr) {
		return lErr.Code == code
	}
	return false
}

// As returns err as a LinkError, wrapping unknown errors as INTERNAL.
func As(err error) *LinkError {
	var lErr *LinkError
	if stderrors.As(err, &lErr) {
		return lErr
	}
	return NewInternal(err)
}
