// Package errors defines the error taxonomy of the session manager.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a category of session error.
type ErrorCode string

const (
	// ErrCodeConfigurationMissing indicates required login configuration is absent.
	ErrCodeConfigurationMissing ErrorCode = "configuration_missing"
	// ErrCodeChallengeGenerationFailed indicates the PKCE challenge could not be derived.
	ErrCodeChallengeGenerationFailed ErrorCode = "challenge_generation_failed"
	// ErrCodeDiscoveryUnavailable indicates the provider metadata document could not be fetched.
	ErrCodeDiscoveryUnavailable ErrorCode = "discovery_unavailable"
	// ErrCodeMissingAuthorizationData indicates the callback lacked a code or state.
	ErrCodeMissingAuthorizationData ErrorCode = "missing_authorization_data"
	// ErrCodeInvalidState indicates the callback state was not found or did not match.
	ErrCodeInvalidState ErrorCode = "invalid_state"
	// ErrCodeTokenExchangeFailed indicates the backend rejected the code exchange.
	ErrCodeTokenExchangeFailed ErrorCode = "token_exchange_failed"
	// ErrCodeMalformedTokenResponse indicates a successful exchange without an access token.
	ErrCodeMalformedTokenResponse ErrorCode = "malformed_token_response"
	// ErrCodeRoleFetchFailed indicates the backend identity endpoint failed (soft).
	ErrCodeRoleFetchFailed ErrorCode = "role_fetch_failed"
	// ErrCodeClaimsDecodeFailed indicates the token payload could not be decoded (soft).
	ErrCodeClaimsDecodeFailed ErrorCode = "claims_decode_failed"
	// ErrCodeCallbackAlreadyHandled indicates a duplicate callback invocation.
	ErrCodeCallbackAlreadyHandled ErrorCode = "callback_already_handled"
	// ErrCodeInternal indicates an internal error such as a storage failure.
	ErrCodeInternal ErrorCode = "internal"
)

// Reasons carried by ErrCodeInvalidState errors.
const (
	ReasonStateNotFound = "not found"
	ReasonStateMismatch = "mismatch"
)

// AppError represents a structured error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field names the configuration or parameter involved (optional)
	Field string
	// Reason refines the code, e.g. "not found" or "mismatch" for invalid state (optional)
	Reason string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Reason)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ConfigurationMissing reports the missing configuration names in Field.
func ConfigurationMissing(fields ...string) *AppError {
	joined := strings.Join(fields, ",")
	return &AppError{
		Code:    ErrCodeConfigurationMissing,
		Message: "missing SSO configuration: " + joined,
		Field:   joined,
	}
}

// InvalidState creates an invalid-state error with the given reason.
func InvalidState(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidState,
		Message: "invalid OAuth state",
		Reason:  reason,
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsConfigurationMissing checks if an error is a ConfigurationMissing error.
func IsConfigurationMissing(err error) bool {
	return IsCode(err, ErrCodeConfigurationMissing)
}

// IsInvalidState checks if an error is an InvalidState error.
func IsInvalidState(err error) bool {
	return IsCode(err, ErrCodeInvalidState)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetReason returns the Reason from an error, or empty string if not an AppError or no reason set.
func GetReason(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
