package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes used across the application.
const (
	CodeLoadError     = "LOAD_ERROR"
	CodeFilterError   = "FILTER_ERROR"
	CodeJoinMismatch  = "JOIN_MISMATCH"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeRenderError   = "RENDER_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context, preserving its code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode attaches a code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// LoadError creates a dataset load failure
func LoadError(message string) *AppError {
	return New(CodeLoadError, message)
}

// LoadErrorf creates a formatted dataset load failure
func LoadErrorf(format string, args ...interface{}) *AppError {
	return Newf(CodeLoadError, format, args...)
}

// FilterError creates a filter validation failure
func FilterError(message string) *AppError {
	return New(CodeFilterError, message)
}

// JoinMismatch creates a geographic join failure
func JoinMismatch(message string) *AppError {
	return New(CodeJoinMismatch, message)
}

// ConfigInvalid creates a startup configuration failure
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// Code extracts the error code, or INTERNAL_ERROR for foreign errors
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

// IsCode reports whether an error carries the given code
func IsCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}
