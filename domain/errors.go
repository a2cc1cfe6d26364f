package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors carrying the same code and message, so sentinels survive wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Invalid reports missing or malformed input, or a broken business rule.
func Invalid(format string, args ...interface{}) *Error {
	return NewError(ErrCodeInvalid, fmt.Sprintf(format, args...))
}

// Forbidden reports an authenticated caller lacking the required role or ownership.
func Forbidden(format string, args ...interface{}) *Error {
	return NewError(ErrCodeForbidden, fmt.Sprintf(format, args...))
}

// Common domain errors.
var (
	ErrUserNotFound     = NewError(ErrCodeNotFound, "user not found")
	ErrListingNotFound  = NewError(ErrCodeNotFound, "listing not found")
	ErrOrderNotFound    = NewError(ErrCodeNotFound, "order not found")
	ErrCartItemNotFound = NewError(ErrCodeNotFound, "cart item not found")
	ErrSessionNotFound  = NewError(ErrCodeNotFound, "session not found")

	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "authentication required")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "Invalid email or password")
	ErrAccountBlocked     = NewError(ErrCodeUnauthorized, "account is blocked")
	ErrForbidden          = NewError(ErrCodeForbidden, "insufficient permissions")

	ErrEmailTaken     = NewError(ErrCodeConflict, "email already registered")
	ErrInvalidPayload = NewError(ErrCodeInvalid, "invalid payload")
	ErrEmptyCart      = NewError(ErrCodeInvalid, "cart is empty")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// IsAuthError reports both flavours of authorization failure.
func IsAuthError(err error) bool {
	return IsDomainError(err, ErrCodeUnauthorized) || IsDomainError(err, ErrCodeForbidden)
}
