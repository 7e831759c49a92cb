package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// FileInfo describes a stored file.
type FileInfo struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modified"`
	ContentType string    `json:"contentType"`
}

// Storage is a flat store of uploaded files.
type Storage interface {
	// Save writes r under name, replacing any existing file.
	Save(ctx context.Context, name string, r io.Reader) (FileInfo, error)
	// Open returns a reader the caller must close.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Read returns the whole file.
	Read(ctx context.Context, name string) ([]byte, error)
	// Delete removes name. A missing file is ErrNotFound.
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	// List returns every file, newest first.
	List(ctx context.Context) ([]FileInfo, error)
}

var (
	ErrNotFound    = errors.New("storage: file not found")
	ErrInvalidName = errors.New("storage: invalid file name")
	ErrTooLarge    = errors.New("storage: file too large")
)

// ValidateName rejects empty names, path separators and dot segments.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains ..", ErrInvalidName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidName, name)
	}
	return nil
}
