package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNoWords            = "NO_WORDS"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	ErrCodeInvariantViolation = "INVARIANT_VIOLATION"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeRateLimited        = "RATE_LIMITED"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code      string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message   string // Human-readable error message
	Status    int    // HTTP status code
	Retryable bool   // Whether the caller may retry the same request
	Err       error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewNoWordsError reports an empty candidate pool. It is an expected state,
// not a failure: callers render "nothing to learn right now".
func NewNoWordsError() *AppError {
	return &AppError{
		Code:    ErrCodeNoWords,
		Message: "no words to learn right now",
		Status:  200,
	}
}

// NewConflictError reports a concurrent update that could not be resolved by retrying.
func NewConflictError(err error) *AppError {
	return &AppError{
		Code:      ErrCodeConflict,
		Message:   "concurrent update, please retry",
		Status:    409,
		Retryable: true,
		Err:       err,
	}
}

// NewStoreUnavailableError reports an I/O failure talking to progress or event storage.
func NewStoreUnavailableError(err error) *AppError {
	return &AppError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "storage temporarily unavailable, please retry",
		Status:    503,
		Retryable: true,
		Err:       err,
	}
}

// NewInvariantViolationError describes a derived counter that disagrees with the event log.
func NewInvariantViolationError(userID, wordID int64, stored, actual int) *AppError {
	return &AppError{
		Code:    ErrCodeInvariantViolation,
		Message: fmt.Sprintf("shown_count mismatch for user %d word %d: stored=%d events=%d", userID, wordID, stored, actual),
		Status:  500,
	}
}

// NewUnauthorizedError creates a new UNAUTHORIZED error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Status:  401,
	}
}

// NewRateLimitedError creates a new RATE_LIMITED error
func NewRateLimitedError() *AppError {
	return &AppError{
		Code:      ErrCodeRateLimited,
		Message:   "too many requests",
		Status:    429,
		Retryable: true,
	}
}
