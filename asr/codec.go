package asr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// Protocol constants.
const (
	DefaultCheckcode int32 = 20250122

	RequestSTT  int32 = 1
	RequestPing int32 = 99

	requestHeaderSize  = 13
	pingFrameSize      = 8
	responseHeaderSize = 9
	textOffset         = 13
)

// Engine status codes.
const (
	StatusSuccess           uint8 = 0
	StatusCheckcodeMismatch uint8 = 1
	StatusInvalidData       uint8 = 2
	StatusInvalidRequest    uint8 = 3
	StatusInvalidParameter  uint8 = 4
	StatusInvalidFormat     uint8 = 5
	StatusUnknownCode       uint8 = 8
	StatusException         uint8 = 9
	StatusTimeout           uint8 = 10
)

var statusText = map[uint8]string{
	StatusSuccess:           "success",
	StatusCheckcodeMismatch: "checkcode mismatch",
	StatusInvalidData:       "invalid data",
	StatusInvalidRequest:    "invalid request",
	StatusInvalidParameter:  "invalid parameter",
	StatusInvalidFormat:     "invalid format",
	StatusUnknownCode:       "unknown request code",
	StatusException:         "engine exception",
	StatusTimeout:           "engine timeout",
}

// StatusText names an engine status for diagnostics.
func StatusText(status uint8) string {
	if s, ok := statusText[status]; ok {
		return s
	}
	return fmt.Sprintf("unknown status %d", status)
}

var (
	ErrAudioTooLarge = errors.New("asr: audio exceeds int32 length")
	ErrUnknownFormat = errors.New("asr: unknown format code")
)

// EncodeRequest builds a recognition request frame of 13+len(audio) bytes.
func EncodeRequest(checkcode, requestCode int32, format Format, audio []byte) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, uint8(format))
	}
	if int64(len(audio)) > math.MaxInt32 {
		return nil, ErrAudioTooLarge
	}

	frame := make([]byte, requestHeaderSize+len(audio))
	binary.BigEndian.PutUint32(frame[0:4], uint32(checkcode))
	binary.BigEndian.PutUint32(frame[4:8], uint32(requestCode))
	frame[8] = byte(format)
	binary.BigEndian.PutUint32(frame[9:13], uint32(len(audio)))
	copy(frame[requestHeaderSize:], audio)
	return frame, nil
}

// EncodePing builds the 8-byte liveness frame.
func EncodePing(checkcode int32) []byte {
	frame := make([]byte, pingFrameSize)
	binary.BigEndian.PutUint32(frame[0:4], uint32(checkcode))
	binary.BigEndian.PutUint32(frame[4:8], uint32(RequestPing))
	return frame
}

// Response is a decoded engine reply. Text is empty unless Status is 0.
type Response struct {
	Checkcode   int32
	RequestCode int32
	Status      uint8
	Text        string
}

// DecodeErrorKind classifies decode failures.
type DecodeErrorKind int

const (
	Truncated DecodeErrorKind = iota + 1
	InvalidEncoding
)

func (k DecodeErrorKind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case InvalidEncoding:
		return "invalid encoding"
	default:
		return "unknown"
	}
}

// DecodeError describes a malformed response.
type DecodeError struct {
	Kind   DecodeErrorKind
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("asr: %s response: %s", e.Kind, e.Reason)
}

func truncated(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: Truncated, Reason: fmt.Sprintf(format, args...)}
}

// DecodeStatus parses only the 9-byte reply header. Ping replies carry no
// text length even on success.
func DecodeStatus(buf []byte) (*Response, error) {
	if len(buf) < responseHeaderSize {
		return nil, truncated("need %d header bytes, got %d", responseHeaderSize, len(buf))
	}
	return &Response{
		Checkcode:   int32(binary.BigEndian.Uint32(buf[0:4])),
		RequestCode: int32(binary.BigEndian.Uint32(buf[4:8])),
		Status:      buf[8],
	}, nil
}

// DecodeResponse parses a complete engine reply. For a non-zero status only
// the 9-byte header is read. Bytes past the declared text are ignored.
func DecodeResponse(buf []byte) (*Response, error) {
	resp, err := DecodeStatus(buf)
	if err != nil {
		return nil, err
	}
	if resp.Status != StatusSuccess {
		return resp, nil
	}

	if len(buf) < textOffset {
		return nil, truncated("need %d bytes for text length, got %d", textOffset, len(buf))
	}
	textLen := int32(binary.BigEndian.Uint32(buf[9:13]))
	if textLen < 0 {
		return nil, truncated("negative text length %d", textLen)
	}
	end := int64(textOffset) + int64(textLen)
	if int64(len(buf)) < end {
		return nil, truncated("declared %d text bytes, got %d", textLen, len(buf)-textOffset)
	}

	text := buf[textOffset:end]
	if !utf8.Valid(text) {
		return nil, &DecodeError{Kind: InvalidEncoding, Reason: "text is not valid UTF-8"}
	}
	resp.Text = string(text)
	return resp, nil
}
