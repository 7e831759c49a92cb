// Package local stores uploads as flat files in one directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, log *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.Path, cfg.MaxBytes(), log)
	})
}

// Storage implements storage.Storage on the local filesystem.
type Storage struct {
	dir     string
	maxSize int64
	log     *logger.Logger
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage creates dir if needed. maxSize <= 0 disables the size limit.
func NewStorage(dir string, maxSize int64, log *logger.Logger) (*Storage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", abs, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Storage{dir: abs, maxSize: maxSize, log: log.WithComponent("storage.local")}, nil
}

// Dir returns the absolute upload directory.
func (s *Storage) Dir() string { return s.dir }

func (s *Storage) path(name string) (string, error) {
	if err := storage.ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Save streams r into a temp file and renames it into place, so readers
// never observe a partial upload.
func (s *Storage) Save(_ context.Context, name string, r io.Reader) (storage.FileInfo, error) {
	full, err := s.path(name)
	if err != nil {
		return storage.FileInfo{}, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return storage.FileInfo{}, fmt.Errorf("storage: create temp: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return storage.FileInfo{}, fmt.Errorf("storage: write %s: %w", name, err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		return storage.FileInfo{}, fmt.Errorf("%w: %s exceeds %d bytes", storage.ErrTooLarge, name, s.maxSize)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return storage.FileInfo{}, fmt.Errorf("storage: store %s: %w", name, err)
	}

	st, err := os.Stat(full)
	if err != nil {
		return storage.FileInfo{}, fmt.Errorf("storage: stat %s: %w", name, err)
	}
	s.log.Debug("file saved", logger.Fields("file", name, "bytes", n))
	return fileInfo(st), nil
}

func (s *Storage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	full, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, notFound(name, err)
	}
	return f, nil
}

func (s *Storage) Read(_ context.Context, name string) ([]byte, error) {
	full, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, notFound(name, err)
	}
	return data, nil
}

func (s *Storage) Delete(_ context.Context, name string) error {
	full, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return notFound(name, err)
	}
	s.log.Debug("file deleted", logger.Fields("file", name))
	return nil
}

func (s *Storage) Exists(_ context.Context, name string) (bool, error) {
	full, err := s.path(name)
	if err != nil {
		return false, err
	}
	st, err := os.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("storage: stat %s: %w", name, err)
	}
	return st.Mode().IsRegular(), nil
}

// List skips directories and in-flight temp files.
func (s *Storage) List(_ context.Context) ([]storage.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []storage.FileInfo{}, nil
		}
		return nil, fmt.Errorf("storage: list: %w", err)
	}

	files := make([]storage.FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || storage.ValidateName(e.Name()) != nil || isTemp(e.Name()) {
			continue
		}
		st, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, fileInfo(st))
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

func isTemp(name string) bool {
	return len(name) > 8 && name[:8] == ".upload-"
}

func fileInfo(st fs.FileInfo) storage.FileInfo {
	ct := mime.TypeByExtension(filepath.Ext(st.Name()))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return storage.FileInfo{Name: st.Name(), Size: st.Size(), ModTime: st.ModTime(), ContentType: ct}
}

func notFound(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, name)
	}
	return fmt.Errorf("storage: %s: %w", name, err)
}
