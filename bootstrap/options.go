package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/voicegate/logger"
)

// Option configures an App.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	summaryOut      io.Writer
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger replaces the logger built from config.logging.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = &d }
}

// WithSummaryWriter redirects the startup summary. Pass io.Discard to
// silence it.
func WithSummaryWriter(w io.Writer) Option {
	return func(o *appOptions) { o.summaryOut = w }
}
