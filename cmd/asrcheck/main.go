// Command asrcheck talks to the ASR engine directly. With no arguments it
// pings the engine; otherwise it transcribes each file argument.
//
//	asrcheck -host 10.0.0.5 -port 2500 a.wav b.mp3
//
// Unset flags fall back to the service config (cmd/voicegate/config.yml and
// ASR_* environment variables).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/voicegate/asr"
	"github.com/kbukum/voicegate/bootstrap"
	"github.com/kbukum/voicegate/config"
	"github.com/kbukum/voicegate/logger"
)

// checkConfig reads the service's config file but only uses the asr block.
type checkConfig struct {
	config.ServiceConfig `mapstructure:",squash"`

	ASR asr.Config `yaml:"asr" mapstructure:"asr"`
}

func (c *checkConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.ASR.ApplyDefaults()
}

func (c *checkConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.ASR.Validate()
}

func main() {
	var (
		host        = flag.String("host", "", "engine host")
		port        = flag.Int("port", 0, "engine port")
		checkcode   = flag.Int("checkcode", 0, "shared checkcode")
		timeout     = flag.Duration("timeout", 0, "reply timeout")
		concurrency = flag.Int("c", 2, "files in flight")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.New(&logger.Config{Level: level, Format: logger.FormatConsole, Output: "stderr"}, "asrcheck")

	cfg := &checkConfig{}
	if err := config.LoadConfig("voicegate", cfg); err != nil {
		log.Warn("Config not loaded, using flags and defaults", logger.Fields(logger.FieldError, err))
	}
	cfg.Name = "asrcheck"
	if *host != "" {
		cfg.ASR.Host = *host
	}
	if *port != 0 {
		cfg.ASR.Port = *port
	}
	if *checkcode != 0 {
		cfg.ASR.Checkcode = int32(*checkcode)
	}
	if *timeout != 0 {
		cfg.ASR.Timeout = *timeout
	}

	if err := run(cfg, log, flag.Args(), *concurrency); err != nil {
		fmt.Fprintf(os.Stderr, "asrcheck: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *checkConfig, log *logger.Logger, files []string, concurrency int) error {
	app, err := bootstrap.NewApp(cfg, bootstrap.WithLogger(log), bootstrap.WithSummaryWriter(io.Discard))
	if err != nil {
		return err
	}
	engine := asr.NewComponent(cfg.ASR, log.WithComponent("asr"))
	if err := app.RegisterComponent(engine); err != nil {
		return err
	}
	return app.RunTask(context.Background(), func(ctx context.Context) error {
		if len(files) == 0 {
			return ping(ctx, engine.Client(), os.Stdout)
		}
		return transcribe(ctx, engine.Client(), files, concurrency, os.Stdout)
	})
}

type engine interface {
	Ping(ctx context.Context) error
	RecognizeFile(ctx context.Context, fileName string, audio []byte) (*asr.Result, error)
}

func ping(ctx context.Context, e engine, out io.Writer) error {
	if err := e.Ping(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, "ok")
	return err
}

// transcribe prints one "name<TAB>text" line per file in completion order.
// Every file is attempted; the first failure is returned.
func transcribe(ctx context.Context, e engine, files []string, concurrency int, out io.Writer) error {
	var (
		g     errgroup.Group
		mu    sync.Mutex
		first error
	)
	g.SetLimit(max(concurrency, 1))

	report := func(name, line string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintf(out, "%s\terror: %v\n", name, err)
			if first == nil {
				first = fmt.Errorf("%s: %w", name, err)
			}
			return
		}
		fmt.Fprintf(out, "%s\t%s\n", name, line)
	}

	for _, path := range files {
		g.Go(func() error {
			name := filepath.Base(path)
			audio, err := os.ReadFile(path)
			if err != nil {
				report(name, "", err)
				return nil
			}
			res, err := e.RecognizeFile(ctx, name, audio)
			if err != nil {
				report(name, "", err)
				return nil
			}
			report(name, res.Text, nil)
			return nil
		})
	}
	_ = g.Wait()
	return first
}
