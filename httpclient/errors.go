package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/resilience"
)

// ErrorCode classifies client errors.
type ErrorCode int

const (
	ErrCodeTimeout ErrorCode = iota
	ErrCodeConnection
	ErrCodeAuth
	ErrCodeNotFound
	ErrCodeRateLimit
	ErrCodeValidation
	ErrCodeServer
	ErrCodeCircuitOpen
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeValidation:
		return "validation"
	case ErrCodeServer:
		return "server"
	case ErrCodeCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}

// Error is a classified client error. StatusCode is 0 when no response
// arrived.
type Error struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Retryable  bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewTimeoutError wraps a deadline or cancellation failure.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Retryable: true, Err: err}
}

// NewConnectionError wraps a transport failure.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Retryable: true, Err: err}
}

// NewValidationError reports a request that could not be built.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// ClassifyStatusCode returns nil for 2xx and a typed error otherwise.
func ClassifyStatusCode(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Message: http.StatusText(status), Body: body}
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = ErrCodeAuth
	case status == http.StatusNotFound:
		e.Code = ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		e.Code, e.Retryable = ErrCodeRateLimit, true
	case status >= 400 && status < 500:
		e.Code = ErrCodeValidation
	case status >= 500:
		e.Code, e.Retryable = ErrCodeServer, true
	default:
		e.Code = ErrCodeServer
	}
	return e
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IsTimeout(err error) bool     { return hasCode(err, ErrCodeTimeout) }
func IsConnection(err error) bool  { return hasCode(err, ErrCodeConnection) }
func IsAuth(err error) bool        { return hasCode(err, ErrCodeAuth) }
func IsNotFound(err error) bool    { return hasCode(err, ErrCodeNotFound) }
func IsServerError(err error) bool { return hasCode(err, ErrCodeServer) }

// IsRetryable reports whether err is a retryable *Error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

// ToAppError maps a client error from upstream service to an AppError.
// Upstream HTTP errors keep their status and body in the details.
func ToAppError(service string, err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if ae, ok := apperrors.AsAppError(err); ok {
		return ae
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return apperrors.ServiceUnavailable(service).WithCause(err)
	}
	var e *Error
	if !errors.As(err, &e) {
		return apperrors.ExternalServiceError(service, err)
	}
	switch e.Code {
	case ErrCodeTimeout:
		return apperrors.Timeout(service).WithCause(err)
	case ErrCodeConnection:
		return apperrors.ConnectionFailed(service).WithCause(err)
	case ErrCodeCircuitOpen:
		return apperrors.ServiceUnavailable(service).WithCause(err)
	}
	ae := apperrors.ExternalServiceError(service, err)
	if e.StatusCode > 0 {
		ae = ae.WithDetail("upstream_status", e.StatusCode)
	}
	if len(e.Body) > 0 {
		ae = ae.WithDetail("upstream_body", truncate(string(e.Body), 1024))
	}
	return ae
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
