// Package errors defines custom error types and error handling utilities for the tgroups service.
// This package provides structured error types that map onto API error codes and HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/turtacn/tgroups/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the API error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

// baseError is the internal implementation of AppError
type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

// Code returns the API error code
func (e *baseError) Code() constants.ErrorCode {
	return e.code
}

// HTTPStatus returns the HTTP status code
func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

// Description returns the error description
func (e *baseError) Description() string {
	return e.description
}

// Unwrap returns the underlying cause error
func (e *baseError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new AppError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required field or carries a malformed value.",
		message,
	)
}

// ErrConfigMissing creates a config_missing error. No remote call is made when it is returned.
func ErrConfigMissing(message string) AppError {
	return NewError(
		constants.ErrCodeConfigMissing,
		http.StatusBadRequest,
		"Account credentials or the stored session are not configured.",
		message,
	)
}

// ErrAuthNotStarted creates an auth_not_started error.
// It is distinct from a rejected code: the token has no login in progress at all.
func ErrAuthNotStarted() AppError {
	return NewError(
		constants.ErrCodeAuthNotStarted,
		http.StatusBadRequest,
		"No login is in progress for this session.",
		"No login in progress for this session. Please start again.",
	)
}

// ErrSessionInvalid creates a session_invalid error, raised when the stored session cannot connect
func ErrSessionInvalid(message string) AppError {
	return NewError(
		constants.ErrCodeSessionInvalid,
		http.StatusInternalServerError,
		"The stored session could not be used. Authenticate again.",
		message,
	)
}

// ErrRemote creates a remote_failure error for a call rejected by the remote service
func ErrRemote(message string, cause error) AppError {
	return NewError(
		constants.ErrCodeRemoteFailure,
		http.StatusInternalServerError,
		"The remote service rejected the request.",
		message,
	).WithCause(cause)
}

// ErrServerError creates a server_error error
func ErrServerError(message string) AppError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition that prevented it from fulfilling the request.",
		message,
	)
}

// ErrNotFound creates a not_found error
func ErrNotFound(resource string) AppError {
	return NewError(
		constants.ErrCodeNotFound,
		http.StatusNotFound,
		"The requested resource was not found",
		fmt.Sprintf("%s not found", resource),
	)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given error code
func HasCode(err error, code constants.ErrorCode) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == code
	}
	return false
}

// WrapError wraps a generic error into an AppError
func WrapError(err error, code constants.ErrorCode, message string) AppError {
	var httpStatus int

	switch code {
	case constants.ErrCodeInvalidRequest, constants.ErrCodeConfigMissing, constants.ErrCodeAuthNotStarted:
		httpStatus = http.StatusBadRequest
	case constants.ErrCodeNotFound:
		httpStatus = http.StatusNotFound
	default:
		httpStatus = http.StatusInternalServerError
	}

	return NewError(code, httpStatus, err.Error(), message).WithCause(err)
}

// ShouldLogError determines if an error should be logged at error level
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		// 4xx are client mistakes
		return appErr.HTTPStatus() >= 500
	}
	return true
}

//Personal.AI order the ending
