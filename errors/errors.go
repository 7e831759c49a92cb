package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail entry and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError, deriving Retryable from the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// ServiceUnavailable reports that a dependency is switched off or unreachable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// ConnectionFailed reports a transport failure talking to service.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s. Please verify the service is running.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout reports that operation did not finish in time.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// InvalidInput reports a bad request field.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation reports a failed validation with a free-form message.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// MissingField reports a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{"field": field},
	}
}

// UnsupportedFormat reports an audio container the ASR engine does not accept.
func UnsupportedFormat(ext string, supported []string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedFormat, Message: fmt.Sprintf("Unsupported audio format %q.", ext),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{"extension": ext, "supported": supported},
	}
}

// Unauthorized reports a missing or rejected credential.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken reports a bearer token that is neither the admin key nor a valid JWT.
func InvalidToken() *AppError {
	return &AppError{
		Code: ErrCodeInvalidToken, Message: "Invalid or expired token.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden reports an authenticated caller without the required role.
func Forbidden(reason string) *AppError {
	return &AppError{
		Code: ErrCodeForbidden, Message: reason,
		HTTPStatus: http.StatusForbidden,
	}
}

// RateLimited reports a client over its request budget.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests. Please slow down.",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// PayloadTooLarge reports a request body or upload over the configured limit.
func PayloadTooLarge(limit int64) *AppError {
	return &AppError{
		Code: ErrCodePayloadTooLarge, Message: "The request body is too large.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
		Details: map[string]any{"limit_bytes": limit},
	}
}

// EngineError reports a non-zero status returned by the ASR engine.
func EngineError(status uint8, statusText string) *AppError {
	return &AppError{
		Code: ErrCodeEngineError, Message: fmt.Sprintf("The ASR engine reported failure: %s.", statusText),
		HTTPStatus: http.StatusBadGateway,
		Details: map[string]any{"status": status, "status_text": statusText},
	}
}

// ProtocolError reports a malformed response from the ASR engine.
func ProtocolError(reason string) *AppError {
	return &AppError{
		Code: ErrCodeProtocolError, Message: "The ASR engine returned a malformed response.",
		HTTPStatus: http.StatusBadGateway,
		Details: map[string]any{"reason": reason},
	}
}

// Internal wraps an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// DatabaseError wraps a persistence failure.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "A database error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
	}
}

// ExternalServiceError wraps a failure from a third-party API.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}
