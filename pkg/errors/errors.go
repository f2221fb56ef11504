package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Business logic errors
	ErrorCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrorCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrorCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrorCodeConflict      ErrorCode = "CONFLICT"

	// Technical errors
	ErrorCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabase        ErrorCode = "DATABASE_ERROR"
	ErrorCodeStorage         ErrorCode = "STORAGE_ERROR"
	ErrorCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrorCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrorCodeRateLimit       ErrorCode = "RATE_LIMIT_ERROR"

	// Request errors
	ErrorCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrorCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

// AppError is the error type every service returns to the HTTP layer.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ToJSON converts the error to JSON for API responses
func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"success":    false,
		"error":      e.Message,
		"code":       e.Code,
		"details":    e.Details,
		"timestamp":  e.Timestamp,
		"request_id": e.RequestID,
	})
	return data
}

// GetHTTPStatus returns the appropriate HTTP status code for the error
func (e *AppError) GetHTTPStatus() int {
	switch e.Code {
	case ErrorCodeValidation, ErrorCodeBadRequest, ErrorCodeInvalidJSON:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeAlreadyExists, ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorCodeTimeout:
		return http.StatusRequestTimeout
	case ErrorCodeRateLimit:
		return http.StatusTooManyRequests
	case ErrorCodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Details:   make(map[string]interface{}),
		Timestamp: time.Now(),
	}
}

// NewAppErrorWithCause creates a new application error with an underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	err := NewAppError(code, message)
	err.Cause = cause
	return err
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// ValidationError creates a validation error
func ValidationError(message string) *AppError {
	return NewAppError(ErrorCodeValidation, message)
}

// ValidationErrorWithDetails creates a validation error with field details
func ValidationErrorWithDetails(message string, fields map[string]string) *AppError {
	err := NewAppError(ErrorCodeValidation, message)
	for field, msg := range fields {
		err.WithDetail(field, msg)
	}
	return err
}

// NotFoundError creates a not found error, e.g. NotFoundError("computer").
func NotFoundError(resource string) *AppError {
	return NewAppError(ErrorCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource)
}

// AlreadyExistsError creates a duplicate error naming the clashing field.
func AlreadyExistsError(resource string) *AppError {
	return NewAppError(ErrorCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

// UnauthorizedError is returned for missing or bad credentials.
func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrorCodeUnauthorized, message)
}

// ForbiddenError is returned when the caller is known but not allowed.
func ForbiddenError(message string) *AppError {
	return NewAppError(ErrorCodeForbidden, message)
}

// ConflictError is returned when an operation would break a reference.
func ConflictError(message string) *AppError {
	return NewAppError(ErrorCodeConflict, message)
}

// DatabaseError creates a database error
func DatabaseError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeDatabase, message, cause)
}

// StorageError wraps failures of the image store.
func StorageError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeStorage, message, cause)
}

// ExternalServiceError creates an external service error
func ExternalServiceError(service string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeExternalService,
		fmt.Sprintf("external service '%s' error", service), cause)
}

// InternalError creates an internal server error
func InternalError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeInternal, message, cause)
}

// TimeoutError creates a timeout error
func TimeoutError(operation string) *AppError {
	return NewAppError(ErrorCodeTimeout, fmt.Sprintf("timeout during %s", operation))
}

// BadRequestError creates a bad request error
func BadRequestError(message string) *AppError {
	return NewAppError(ErrorCodeBadRequest, message)
}

// InvalidJSONError creates an invalid JSON error
func InvalidJSONError(cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeInvalidJSON, "Invalid JSON format", cause)
}

// PayloadTooLargeError is returned when an upload exceeds the configured ceiling.
func PayloadTooLargeError(limit int64) *AppError {
	return NewAppError(ErrorCodePayloadTooLarge, fmt.Sprintf("payload exceeds %d bytes", limit)).
		WithDetail("limit_bytes", limit)
}

// MethodNotAllowedError is returned when a path exists but not for method.
func MethodNotAllowedError(method string) *AppError {
	return NewAppError(ErrorCodeMethodNotAllowed, fmt.Sprintf("method %s not allowed", method))
}

// IsAppError reports whether err is, or wraps, an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// WrapError wraps a generic error as an internal error
func WrapError(err error, message string) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return NewAppErrorWithCause(ErrorCodeInternal, message, err)
}
