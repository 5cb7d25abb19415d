package terrors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an error for callers that need to map failures to
// transport-level responses without parsing message strings.
type ErrorCode string

const (
	ErrCodeUnknown           ErrorCode = "UNKNOWN"
	ErrCodeInvalidInput      ErrorCode = "INVALID_ARGUMENT"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeReferenceNotFound ErrorCode = "REFERENCE_NOT_FOUND"
	ErrCodeAlreadyExists     ErrorCode = "ALREADY_EXISTS"
	ErrCodeUnavailable       ErrorCode = "UNAVAILABLE"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// TrackError is the error type returned across package boundaries. It carries
// a machine-readable code, a human-readable message, the wrapped cause, and
// optional structured details.
type TrackError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Details map[string]any
}

func (e *TrackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *TrackError) Unwrap() error {
	return e.Cause
}

// Is matches two TrackErrors by code, so sentinel-style comparisons work
// across independently constructed instances.
func (e *TrackError) Is(target error) bool {
	var te *TrackError
	if errors.As(target, &te) {
		return e.Code == te.Code
	}
	return false
}

// WithDetail attaches a key/value pair to the error and returns it.
func (e *TrackError) WithDetail(key string, value any) *TrackError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a TrackError with the given code and message.
func New(code ErrorCode, message string) *TrackError {
	return &TrackError{Code: code, Message: message}
}

// Newf creates a TrackError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *TrackError {
	return &TrackError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *TrackError {
	if err == nil {
		return nil
	}
	return &TrackError{Code: code, Message: message, Cause: err}
}

// Wrapf annotates err with a code and formatted message. Returns nil if err
// is nil.
func Wrapf(err error, code ErrorCode, format string, args ...any) *TrackError {
	if err == nil {
		return nil
	}
	return &TrackError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// GetCode extracts the code from err, walking the wrap chain. Non-TrackErrors
// and nil report ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}
	var te *TrackError
	if errors.As(err, &te) {
		return te.Code
	}
	return ErrCodeUnknown
}

// IsNotFound reports whether err is a missing-record or missing-reference
// failure. Referential-integrity failures are a sub-case of not-found so
// callers can map both to a 404-equivalent.
func IsNotFound(err error) bool {
	code := GetCode(err)
	return code == ErrCodeNotFound || code == ErrCodeReferenceNotFound
}

// IsValidation reports whether err was caused by invalid caller input.
func IsValidation(err error) bool {
	return GetCode(err) == ErrCodeInvalidInput
}
