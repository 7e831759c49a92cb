package asr

import (
	"errors"
	"fmt"

	apperrors "github.com/kbukum/voicegate/errors"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindValidation: bad input, rejected before any network I/O.
	KindValidation Kind = iota + 1
	// KindConnect: the engine could not be reached, or the socket failed.
	KindConnect
	// KindTimeout: no complete reply before the deadline or cancellation.
	KindTimeout
	// KindProtocol: the reply was malformed or too large.
	KindProtocol
	// KindEngine: the engine replied with a non-zero status.
	KindEngine
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConnect:
		return "connect"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol"
	case KindEngine:
		return "engine"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails. Status is set only for
// KindEngine.
type Error struct {
	Kind   Kind
	Op     string
	Status uint8
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindEngine {
		return fmt.Sprintf("asr %s: engine status %d (%s)", e.Op, e.Status, StatusText(e.Status))
	}
	if e.Err == nil {
		return fmt.Sprintf("asr %s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("asr %s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func isKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

func IsValidation(err error) bool { return isKind(err, KindValidation) }
func IsConnect(err error) bool    { return isKind(err, KindConnect) }
func IsTimeout(err error) bool    { return isKind(err, KindTimeout) }
func IsProtocol(err error) bool   { return isKind(err, KindProtocol) }
func IsEngine(err error) bool     { return isKind(err, KindEngine) }

// ErrDial marks a KindConnect error raised before any byte was sent.
var ErrDial = errors.New("dial failed")

// IsDial reports a connect failure that never reached the engine, so the
// request is safe to resend.
func IsDial(err error) bool { return IsConnect(err) && errors.Is(err, ErrDial) }

// ToAppError maps err onto the HTTP-facing error taxonomy. Errors outside
// this package become internal errors.
func ToAppError(err error) *apperrors.AppError {
	var e *Error
	if !errors.As(err, &e) {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return appErr
		}
		return apperrors.Internal(err)
	}

	switch e.Kind {
	case KindValidation:
		var uf *UnsupportedFormatError
		if errors.As(e.Err, &uf) {
			return apperrors.UnsupportedFormat(uf.Extension, SupportedExtensions()).WithCause(err)
		}
		return apperrors.Validation(e.Error()).WithCause(err)
	case KindConnect:
		return apperrors.ConnectionFailed("ASR engine").WithCause(err)
	case KindTimeout:
		return apperrors.Timeout("speech recognition").WithCause(err)
	case KindProtocol:
		return apperrors.ProtocolError(errReason(e)).WithCause(err)
	case KindEngine:
		return apperrors.EngineError(e.Status, StatusText(e.Status)).WithCause(err)
	default:
		return apperrors.Internal(err)
	}
}

func errReason(e *Error) string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}
