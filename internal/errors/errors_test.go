package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "User not found")
		assert.Equal(t, "NOT_FOUND: User not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(ErrCodeRemoteFailure, "Remote API unreachable", cause)
		assert.Contains(t, err.Error(), "REMOTE_FAILURE")
		assert.Contains(t, err.Error(), "Remote API unreachable")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "email", "reason": "invalid format"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"Forbidden", func() *AppError { return Forbidden("test") }, ErrCodeForbidden},
		{"InvalidToken", func() *AppError { return InvalidToken("test") }, ErrCodeInvalidToken},
		{"NoSession", func() *AppError { return NoSession() }, ErrCodeNoSession},
		{"NotFound", func() *AppError { return NotFound("User") }, ErrCodeNotFound},
		{"AlreadyExists", func() *AppError { return AlreadyExists("User") }, ErrCodeAlreadyExists},
		{"AlreadyInvited", func() *AppError { return AlreadyInvited() }, ErrCodeAlreadyInvited},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("email", "invalid") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("email") }, ErrCodeMissingRequired},
		{"RateLimited", func() *AppError { return RateLimited() }, ErrCodeRateLimited},
		{"RemoteFailure", func() *AppError { return RemoteFailure(500, "boom") }, ErrCodeRemoteFailure},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestCorruptState(t *testing.T) {
	t.Run("wraps parse error with key", func(t *testing.T) {
		cause := errors.New("unexpected end of JSON input")
		err := CorruptState("invites", cause)
		assert.Equal(t, ErrCodeCorruptState, err.Code)
		assert.Contains(t, err.Message, "invites")
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestIsAuthLost(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{Forbidden("session invalid"), true},
		{Unauthorized("no token"), true},
		{InvalidToken("bad token"), true},
		{RateLimited(), false},
		{RemoteFailure(500, ""), false},
		{errors.New("plain error"), false},
		{fmt.Errorf("wrapped: %w", Forbidden("x")), true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, IsAuthLost(tc.err), "err: %v", tc.err)
	}
}

func TestGetCode(t *testing.T) {
	t.Run("returns code from AppError", func(t *testing.T) {
		assert.Equal(t, ErrCodeRateLimited, GetCode(RateLimited()))
	})

	t.Run("returns internal for plain errors", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	})

	t.Run("unwraps nested AppError", func(t *testing.T) {
		err := fmt.Errorf("fetch timeline: %w", RateLimited())
		assert.Equal(t, ErrCodeRateLimited, GetCode(err))
	})
}
