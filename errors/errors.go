package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies application errors for reporting and exit handling.
type ErrorCode string

const (
	ErrorCode_CONFIGURATION      ErrorCode = "CONFIGURATION"
	ErrorCode_NOT_FOUND          ErrorCode = "NOT_FOUND"
	ErrorCode_DUPLICATE          ErrorCode = "DUPLICATE"
	ErrorCode_TRANSIENT_FETCH    ErrorCode = "TRANSIENT_FETCH"
	ErrorCode_MALFORMED_RESPONSE ErrorCode = "MALFORMED_RESPONSE"
	ErrorCode_INTERNAL           ErrorCode = "INTERNAL"
)

func (c ErrorCode) String() string { return string(c) }

// AppError is the custom error type carried through the pipeline.
type AppError struct {
	Raw     error
	Code    ErrorCode
	Message string
	Details map[string]string
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e AppError) Unwrap() error { return e.Raw }

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the classification of err, or ErrorCode_INTERNAL for
// errors raised outside this package.
func CodeOf(err error) ErrorCode {
	var app AppError
	if stderrors.As(err, &app) {
		return app.Code
	}
	return ErrorCode_INTERNAL
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Configuration / precondition errors. These abort a run before any
// store mutation happens.

func ErrConfiguration(message string) AppError {
	return AppError{
		Code:    ErrorCode_CONFIGURATION,
		Message: message,
	}
}

func ErrMissingCredential(name string) AppError {
	return AppError{
		Code:    ErrorCode_CONFIGURATION,
		Message: fmt.Sprintf("%s environment variable not set", name),
	}
}

func ErrUnknownProfile(name string) AppError {
	return AppError{
		Code:    ErrorCode_CONFIGURATION,
		Message: "Unknown profile",
	}.WithDetail("profile", name)
}

// Store errors.

func ErrVideoNotFound(videoID string) AppError {
	return AppError{
		Code:    ErrorCode_NOT_FOUND,
		Message: "Video not found",
	}.WithDetail("video_id", videoID)
}

func ErrAnalysisExists(videoID string) AppError {
	return AppError{
		Code:    ErrorCode_DUPLICATE,
		Message: "Analysis already exists",
	}.WithDetail("video_id", videoID)
}

func ErrSummaryNotFound(label string) AppError {
	return AppError{
		Code:    ErrorCode_NOT_FOUND,
		Message: "Period summary not found",
	}.WithDetail("period", label)
}

// Per-item collaborator errors. Recorded in the run tally, never fatal.

func ErrTransientFetch(operation string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_TRANSIENT_FETCH,
		Message: fmt.Sprintf("Fetch failed: %s", operation),
	}
}

func ErrMalformedResponse(err error, raw string) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_MALFORMED_RESPONSE,
		Message: "Model response failed structural parse",
	}.WithDetail("raw_output", raw)
}

func ErrInternal(err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_INTERNAL,
		Message: "Internal error",
	}
}
