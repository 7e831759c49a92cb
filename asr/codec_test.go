package asr

import (
	"encoding/binary"
	"errors"
	"testing"
)

func response(checkcode, reqCode int32, status uint8, textLen int32, text []byte) []byte {
	buf := make([]byte, 9, 13+len(text))
	binary.BigEndian.PutUint32(buf[0:4], uint32(checkcode))
	binary.BigEndian.PutUint32(buf[4:8], uint32(reqCode))
	buf[8] = status
	if status != 0 {
		return buf
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(textLen))
	return append(buf, text...)
}

func TestEncodeRequestLayout(t *testing.T) {
	audio := []byte{0xde, 0xad, 0xbe, 0xef, 0x00}
	frame, err := EncodeRequest(DefaultCheckcode, RequestSTT, FormatMP3, audio)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	if len(frame) != 13+len(audio) {
		t.Fatalf("len = %d, want %d", len(frame), 13+len(audio))
	}
	if got := int32(binary.BigEndian.Uint32(frame[0:4])); got != DefaultCheckcode {
		t.Errorf("checkcode = %d", got)
	}
	if got := int32(binary.BigEndian.Uint32(frame[4:8])); got != RequestSTT {
		t.Errorf("requestCode = %d", got)
	}
	if frame[8] != byte(FormatMP3) {
		t.Errorf("format = %d", frame[8])
	}
	if got := binary.BigEndian.Uint32(frame[9:13]); got != uint32(len(audio)) {
		t.Errorf("audioLength = %d", got)
	}
	if string(frame[13:]) != string(audio) {
		t.Errorf("audio = %x", frame[13:])
	}
}

func TestEncodeRequestEmptyAudio(t *testing.T) {
	frame, err := EncodeRequest(7, RequestSTT, FormatWAV, nil)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	if len(frame) != 13 || binary.BigEndian.Uint32(frame[9:13]) != 0 {
		t.Errorf("frame = %x", frame)
	}
}

func TestEncodeRequestUnknownFormat(t *testing.T) {
	for _, f := range []Format{0, 4, 255} {
		if _, err := EncodeRequest(1, RequestSTT, f, []byte{1}); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("format %d: error = %v, want ErrUnknownFormat", f, err)
		}
	}
}

func TestEncodePing(t *testing.T) {
	frame := EncodePing(DefaultCheckcode)
	if len(frame) != 8 {
		t.Fatalf("len = %d, want 8", len(frame))
	}
	if got := int32(binary.BigEndian.Uint32(frame[4:8])); got != RequestPing {
		t.Errorf("requestCode = %d, want 99", got)
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name     string
		buf      []byte
		want     *Response
		wantKind DecodeErrorKind
	}{
		{
			name: "success",
			buf:  response(20250122, 1, 0, 5, []byte("hello")),
			want: &Response{Checkcode: 20250122, RequestCode: 1, Status: 0, Text: "hello"},
		},
		{
			name: "success empty text",
			buf:  response(20250122, 1, 0, 0, nil),
			want: &Response{Checkcode: 20250122, RequestCode: 1},
		},
		{
			name: "utf-8 text",
			buf:  response(20250122, 1, 0, int32(len("안녕하세요")), []byte("안녕하세요")),
			want: &Response{Checkcode: 20250122, RequestCode: 1, Text: "안녕하세요"},
		},
		{
			name: "trailing bytes ignored",
			buf:  append(response(1, 1, 0, 2, []byte("ok")), 0xff, 0xfe),
			want: &Response{Checkcode: 1, RequestCode: 1, Text: "ok"},
		},
		{
			name: "non-zero status short-circuits",
			buf:  append(response(1, 1, 7, 0, nil), 0xff, 0xff, 0xff),
			want: &Response{Checkcode: 1, RequestCode: 1, Status: 7},
		},
		{
			name: "status-only response",
			buf:  response(20250122, 99, 5, 0, nil),
			want: &Response{Checkcode: 20250122, RequestCode: 99, Status: 5},
		},
		{name: "empty", buf: nil, wantKind: Truncated},
		{name: "eight bytes", buf: make([]byte, 8), wantKind: Truncated},
		{name: "success without length", buf: response(1, 1, 0, 0, nil)[:11], wantKind: Truncated},
		{name: "over-declared length", buf: response(1, 1, 0, 10, []byte("short")), wantKind: Truncated},
		{name: "negative length", buf: response(1, 1, 0, -1, nil), wantKind: Truncated},
		{name: "invalid utf-8", buf: response(1, 1, 0, 2, []byte{0xc3, 0x28}), wantKind: InvalidEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResponse(tt.buf)
			if tt.wantKind != 0 {
				var de *DecodeError
				if !errors.As(err, &de) || de.Kind != tt.wantKind {
					t.Fatalf("DecodeResponse() error = %v, want %s", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeResponse() error = %v", err)
			}
			if *got != *tt.want {
				t.Errorf("DecodeResponse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeResponseNeverPanics(t *testing.T) {
	full := response(20250122, 1, 0, 5, []byte("hello"))
	for i := 0; i <= len(full); i++ {
		_, _ = DecodeResponse(full[:i])
	}
	huge := response(1, 1, 0, 0x7fffffff, []byte("x"))
	if _, err := DecodeResponse(huge); err == nil {
		t.Error("expected error for max int32 length")
	}
}

func TestDecodeStatus(t *testing.T) {
	ok := response(20250122, RequestPing, 0, 0, nil)[:9]
	resp, err := DecodeStatus(ok)
	if err != nil {
		t.Fatalf("DecodeStatus() error = %v", err)
	}
	if resp.Checkcode != 20250122 || resp.RequestCode != RequestPing || resp.Status != 0 {
		t.Errorf("DecodeStatus() = %+v", resp)
	}
	if _, err := DecodeResponse(ok); err == nil {
		t.Error("DecodeResponse() should want a text length for status 0")
	}
	if _, err := DecodeStatus(ok[:8]); err == nil {
		t.Error("DecodeStatus() accepted 8 bytes")
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status uint8
		want   string
	}{
		{0, "success"},
		{1, "checkcode mismatch"},
		{5, "invalid format"},
		{10, "engine timeout"},
		{7, "unknown status 7"},
	}
	for _, tt := range tests {
		if got := StatusText(tt.status); got != tt.want {
			t.Errorf("StatusText(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
