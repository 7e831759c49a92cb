package asr

import (
	"path/filepath"
	"strings"
)

// Format is the one-byte audio container code.
type Format uint8

const (
	FormatWAV  Format = 1
	FormatMP3  Format = 2
	FormatWebM Format = 3
)

var extensionFormats = map[string]Format{
	".wav":  FormatWAV,
	".mp3":  FormatMP3,
	".webm": FormatWebM,
}

// Valid reports whether f is a code the engine accepts.
func (f Format) Valid() bool {
	return f >= FormatWAV && f <= FormatWebM
}

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	case FormatWebM:
		return "webm"
	default:
		return "unknown"
	}
}

// SupportedExtensions lists the file extensions FormatFromName accepts.
func SupportedExtensions() []string {
	return []string{".wav", ".mp3", ".webm"}
}

// FormatFromName maps a file name or bare extension to its Format. The
// match is case-insensitive. Anything else is a KindValidation error.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" && strings.HasPrefix(name, ".") {
		ext = strings.ToLower(name)
	}
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}
	return 0, &Error{Kind: KindValidation, Op: "format", Err: &UnsupportedFormatError{Extension: ext}}
}

// UnsupportedFormatError names an extension with no format code.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return "file has no extension"
	}
	return "unsupported audio extension " + e.Extension
}
