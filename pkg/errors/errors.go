package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorType classifies an AppError for API clients
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeRateLimit     ErrorType = "RATE_LIMIT"
	ErrorTypeUnprocessable ErrorType = "UNPROCESSABLE"
	ErrorTypeInternal      ErrorType = "INTERNAL"
	ErrorTypeDatabase      ErrorType = "DATABASE"
)

// Error codes surfaced to API clients
const (
	CodeNoteNotFound         = "NOTE_NOT_FOUND"
	CodeGraphNodeNotFound    = "GRAPH_NODE_NOT_FOUND"
	CodeReferenceUnparseable = "REFERENCE_UNPARSEABLE"
	CodeGenerationInProgress = "GENERATION_IN_PROGRESS"
	CodeGenerationFailed     = "GENERATION_FAILED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeRateLimited          = "TOO_MANY_REQUESTS"
)

// AppError carries the classification, client-facing code and HTTP status of
// a failure raised anywhere in the graph pipeline
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
	// RetryAfter is sent as the Retry-After header when positive.
	RetryAfter time.Duration `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets the client-facing error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails attaches structured details to the response body
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause records the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func newAppError(errType ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// captureStackTrace skips itself, newAppError and the exported constructor
func captureStackTrace() string {
	var pcs [32]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

// NewValidationError reports malformed input
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewNotFoundError reports a missing note or graph node
func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, resource+" not found")
}

// NewConflictError reports a request that collides with work in progress
func NewConflictError(message string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message)
}

// NewUnauthorizedError reports a missing or rejected credential
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message).WithCode(CodeUnauthorized)
}

// NewRateLimitError reports an exhausted request budget. The caller may
// retry after retryAfter.
func NewRateLimitError(retryAfter time.Duration) *AppError {
	e := newAppError(ErrorTypeRateLimit, http.StatusTooManyRequests, "too many requests").WithCode(CodeRateLimited)
	e.RetryAfter = retryAfter
	return e
}

// NewUnprocessableError reports well-formed input the domain cannot
// interpret, such as a Bible reference that does not parse
func NewUnprocessableError(message string) *AppError {
	return newAppError(ErrorTypeUnprocessable, http.StatusUnprocessableEntity, message)
}

// NewInternalError reports a failure the client cannot act on
func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// NewDatabaseError wraps a storage failure
func NewDatabaseError(operation string, err error) *AppError {
	return newAppError(ErrorTypeDatabase, http.StatusInternalServerError,
		fmt.Sprintf("database operation '%s' failed", operation)).WithCause(err)
}

// GetAppError returns the first AppError in err's chain, or nil
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err's chain holds an AppError of errType
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}
