package errors

import (
	"fmt"
	"time"
)

// ErrorCode classifies an application error.
type ErrorCode string

const (
	// Generic
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeConflict   ErrorCode = "CONFLICT"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	// Contest engine
	ErrCodeContestNotFound    ErrorCode = "CONTEST_NOT_FOUND"
	ErrCodeCycleNotFound      ErrorCode = "CYCLE_NOT_FOUND"
	ErrCodeCycleStateConflict ErrorCode = "CYCLE_STATE_CONFLICT"
	ErrCodeInsufficientPrizes ErrorCode = "INSUFFICIENT_PRIZES"
	ErrCodeInvalidPostLink    ErrorCode = "INVALID_POST_LINK"

	// Infrastructure
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeCacheError    ErrorCode = "CACHE_ERROR"
	ErrCodeExternalAPI   ErrorCode = "EXTERNAL_API_ERROR"
	ErrCodeSchedulerAPI  ErrorCode = "SCHEDULER_API_ERROR"
)

// AppError is a typed application error carried from the service layer
// up to the HTTP delivery layer.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error is a "not found" class error.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeContestNotFound ||
		e.Code == ErrCodeCycleNotFound
}

// IsValidation reports whether the error is a validation class error.
func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation ||
		e.Code == ErrCodeBadRequest ||
		e.Code == ErrCodeInvalidPostLink
}

// IsInternal reports whether the error is an infrastructure failure.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeDatabaseError ||
		e.Code == ErrCodeCacheError
}

// WithDetail attaches structured detail to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewNotFoundError creates a "not found" error for a resource.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// NewContestNotFoundError creates a "contest not found" error.
func NewContestNotFoundError(contestID string) *AppError {
	return New(ErrCodeContestNotFound, fmt.Sprintf("Contest not found: %s", contestID)).
		WithDetail("contest_id", contestID)
}

// NewInsufficientPrizesError is returned when the unissued promo-code pool
// cannot cover the configured winners count.
func NewInsufficientPrizesError(contestID string, available, required int) *AppError {
	return New(ErrCodeInsufficientPrizes,
		fmt.Sprintf("Not enough unissued promo codes: have %d, need %d", available, required)).
		WithDetail("contest_id", contestID).
		WithDetail("available", available).
		WithDetail("required", required)
}

// NewDatabaseError creates a database error.
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewExternalAPIError creates a social platform API error.
func NewExternalAPIError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeExternalAPI, fmt.Sprintf("Platform API operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError casts an error to AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
