package errors

import (
	stderrors "errors"
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
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

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is or wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the outermost AppError code, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// IsRetryable reports whether the failed transition may simply be triggered again
func IsRetryable(err error) bool {
	switch GetCode(err) {
	case CodeProfiling, CodeClustering:
		return true
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeProfiling        = "PROFILING_ERROR"
	CodeClustering       = "CLUSTERING_ERROR"
	CodeSynthesisFailure = "SYNTHESIS_FAILURE"
	CodeRunSuperseded    = "RUN_SUPERSEDED"
	CodeDataSource       = "DATA_SOURCE_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// Profiling reports missing or empty field data
func Profiling(message string, cause error) *AppError {
	return &AppError{Code: CodeProfiling, Message: message, Cause: cause}
}

// Clustering reports an invalid clustering parameter or an aborted clustering run
func Clustering(message string, cause error) *AppError {
	return &AppError{Code: CodeClustering, Message: message, Cause: cause}
}

// SynthesisFailure reports that no field survived channel assignment
func SynthesisFailure(message string, cause error) *AppError {
	return &AppError{Code: CodeSynthesisFailure, Message: message, Cause: cause}
}

// Superseded reports that a newer run replaced this one
func Superseded(message string, cause error) *AppError {
	return &AppError{Code: CodeRunSuperseded, Message: message, Cause: cause}
}

// DataSource reports a loader failure
func DataSource(source string, cause error) *AppError {
	return &AppError{
		Code:    CodeDataSource,
		Message: fmt.Sprintf("%s could not be loaded", source),
		Cause:   cause,
	}
}
