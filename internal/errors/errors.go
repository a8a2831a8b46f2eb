package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeNoSession    ErrorCode = "NO_SESSION"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Resource
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrCodeAlreadyInvited ErrorCode = "ALREADY_INVITED"

	// Remote API
	ErrCodeRateLimited   ErrorCode = "RATE_LIMITED"
	ErrCodeRemoteFailure ErrorCode = "REMOTE_FAILURE"

	// Local state
	ErrCodeCorruptState ErrorCode = "CORRUPT_LOCAL_STATE"
	ErrCodeStore        ErrorCode = "STORE_ERROR"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError is a structured error shared across the client
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

func InvalidToken(message string) *AppError {
	return New(ErrCodeInvalidToken, message)
}

func NoSession() *AppError {
	return New(ErrCodeNoSession, "No active session")
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func AlreadyExists(resource string) *AppError {
	return New(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

func AlreadyInvited() *AppError {
	return New(ErrCodeAlreadyInvited, "User has already been invited to this conversation")
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests, try again later")
}

func RemoteFailure(status int, body string) *AppError {
	return New(ErrCodeRemoteFailure, fmt.Sprintf("Remote API returned status %d: %s", status, body)).WithDetails(status)
}

// RemoteStatus returns the HTTP status carried by a RemoteFailure error,
// or zero when err is anything else.
func RemoteStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		if status, ok := appErr.Details.(int); ok {
			return status
		}
	}
	return 0
}

func CorruptState(key string, cause error) *AppError {
	return Wrap(ErrCodeCorruptState, fmt.Sprintf("Corrupt local state for %q", key), cause)
}

func Store(cause error) *AppError {
	return Wrap(ErrCodeStore, "Local store error", cause)
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsAuthLost reports whether err should invalidate the local session.
func IsAuthLost(err error) bool {
	switch GetCode(err) {
	case ErrCodeUnauthorized, ErrCodeForbidden, ErrCodeInvalidToken:
		return true
	}
	return false
}
