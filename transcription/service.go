package transcription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/voicegate/asr"
	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/resilience"
	"github.com/kbukum/voicegate/storage"
)

// Config lives under the "transcription" key.
type Config struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	// RetryAttempts counts the first call. Only connect failures are retried.
	RetryAttempts int           `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoff  time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderASR
	}
	if c.RetryAttempts < 1 {
		c.RetryAttempts = 1
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.RetryAttempts > 10 {
		return fmt.Errorf("transcription.retry_attempts must be at most 10, got %d", c.RetryAttempts)
	}
	return nil
}

// Result is the outcome of TranscribeFile.
type Result struct {
	FileName   string `json:"fileName"`
	Status     uint8  `json:"status"`
	Text       string `json:"text"`
	Format     string `json:"format"`
	DurationMs int64  `json:"durationMs"`
}

// Service transcribes files held in upload storage.
type Service struct {
	cfg      Config
	store    storage.Storage
	provider Provider
	log      *logger.Logger
}

// NewService wires a provider to a store.
func NewService(cfg Config, store storage.Storage, p Provider, log *logger.Logger) *Service {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Service{cfg: cfg, store: store, provider: p, log: log.WithComponent("transcription")}
}

// Provider returns the backend in use.
func (s *Service) Provider() Provider { return s.provider }

// TranscribeFile recognizes the stored file fileName. The format check runs
// before any storage or network I/O.
func (s *Service) TranscribeFile(ctx context.Context, fileName string) (*Result, error) {
	format, err := asr.FormatFromName(fileName)
	if err != nil {
		return nil, err
	}

	audio, err := s.store.Read(ctx, fileName)
	if err != nil {
		return nil, storageError(fileName, err)
	}

	start := time.Now()
	retry := resilience.RetryConfig{
		MaxAttempts:    s.cfg.RetryAttempts,
		InitialBackoff: s.cfg.RetryBackoff,
		RetryIf:        asr.IsDial,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			s.log.WithContext(ctx).Warn("asr dial failed, retrying", logger.Fields(
				"file", fileName,
				"attempt", attempt,
				"backoff", backoff.String(),
				logger.FieldError, err.Error(),
			))
		},
	}
	resp, err := resilience.Retry(ctx, retry, func(ctx context.Context) (*Response, error) {
		return s.provider.Transcribe(ctx, Request{Audio: audio, Format: format, FileName: fileName})
	})
	elapsed := time.Since(start)
	if err != nil {
		s.log.WithContext(ctx).Error("transcription failed", logger.Fields(
			"file", fileName,
			logger.FieldDuration, elapsed.Milliseconds(),
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	s.log.WithContext(ctx).Info("transcription done", logger.Fields(
		"file", fileName,
		"format", format.String(),
		"chars", len(resp.Text),
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return &Result{
		FileName:   fileName,
		Status:     resp.Status,
		Text:       resp.Text,
		Format:     format.String(),
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

func storageError(name string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NotFound("file", name).WithCause(err)
	case errors.Is(err, storage.ErrInvalidName):
		return apperrors.InvalidInput("fileName", err.Error()).WithCause(err)
	}
	return apperrors.Internal(err)
}
