// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown         = "UNKNOWN_ERROR"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeOverflow        = "OVERFLOW"
	CodeWorkerFault     = "WORKER_FAULT"
	CodeIOError         = "IO_ERROR"
	CodeConfigError     = "CONFIG_ERROR"
	CodeTimeout         = "TIMEOUT_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrInvalidArgument = New(CodeInvalidArgument, "invalid argument")
	ErrOverflow        = New(CodeOverflow, "base/digit pair overflows uint64")
	ErrWorkerFault      = New(CodeWorkerFault, "worker fault")
	ErrIOError          = New(CodeIOError, "output I/O error")
	ErrConfigError      = New(CodeConfigError, "configuration error")
	ErrTimeout          = New(CodeTimeout, "operation timeout")
)

// IsInvalidArgument checks if the error is an invalid-argument error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsOverflow checks if the error is an overflow error.
func IsOverflow(err error) bool {
	return errors.Is(err, ErrOverflow)
}

// IsWorkerFault checks if the error is a worker-fault error.
func IsWorkerFault(err error) bool {
	return errors.Is(err, ErrWorkerFault)
}

// IsIOError checks if the error is an output I/O error.
func IsIOError(err error) bool {
	return errors.Is(err, ErrIOError)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// ErrorInfo provides error information mapping.
var ErrorInfo = map[string]string{
	"InvalidArgument": CodeInvalidArgument,
	"Overflow":        CodeOverflow,
	"WorkerFault":     CodeWorkerFault,
	"IOError":         CodeIOError,
	"ConfigError":     CodeConfigError,
}
