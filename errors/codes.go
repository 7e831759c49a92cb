package errors

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Availability errors. These are retryable.
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
)

// Request errors.
const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField      ErrorCode = "MISSING_FIELD"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken      ErrorCode = "INVALID_TOKEN"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeRateLimited       ErrorCode = "RATE_LIMITED"
	ErrCodePayloadTooLarge   ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Upstream errors raised by the ASR engine or a third-party API.
const (
	ErrCodeEngineError     ErrorCode = "ASR_ENGINE_ERROR"
	ErrCodeProtocolError   ErrorCode = "ASR_PROTOCOL_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Internal errors.
const (
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeExternalService:    true,
	ErrCodeDatabaseError:      true,
	ErrCodeRateLimited:        true,
}

// IsRetryableCode reports whether errors with this code may be retried.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
