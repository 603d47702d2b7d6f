package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured lawkit error
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

// Is reports whether target is an AppError carrying the same code, so
// callers can match on the sentinel values below with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Code == e.Code
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the original code
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
	if appErr, ok := err.(*AppError); ok {
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

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeUnknownLaw           = "UNKNOWN_LAW"
	CodeInsufficientData     = "INSUFFICIENT_DATA"
	CodeComputationError     = "COMPUTATION_ERROR"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Sentinels for errors.Is matching.
var (
	ErrInvalidConfiguration = &AppError{Code: CodeInvalidConfiguration}
	ErrUnknownLaw           = &AppError{Code: CodeUnknownLaw}
	ErrInsufficientData     = &AppError{Code: CodeInsufficientData}
	ErrComputation          = &AppError{Code: CodeComputationError}
	ErrInvalidInput         = &AppError{Code: CodeInvalidInput}
)

// InvalidConfiguration reports an option that failed validation.
func InvalidConfiguration(field string, cause error) *AppError {
	return &AppError{
		Code:    CodeInvalidConfiguration,
		Message: fmt.Sprintf("invalid configuration: %s", field),
		Cause:   cause,
	}
}

// InvalidConfigurationf reports an option that failed a domain check.
func InvalidConfigurationf(field, format string, args ...interface{}) *AppError {
	return InvalidConfiguration(field, fmt.Errorf(format, args...))
}

func UnknownLaw(name string) *AppError {
	return New(CodeUnknownLaw, fmt.Sprintf("unknown law %q", name))
}

func InsufficientData(analyzer, message string) *AppError {
	return New(CodeInsufficientData, fmt.Sprintf("%s: insufficient data: %s", analyzer, message))
}

// ComputationError names the analyzer and statistic that could not be computed.
func ComputationError(analyzer, statistic, message string) *AppError {
	return New(CodeComputationError, fmt.Sprintf("%s: cannot compute %s: %s", analyzer, statistic, message))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// Is and As mirror the standard library so callers need a single import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
