package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Config controls telemetry export.
type Config struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint    string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure    bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate  float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	// Prometheus exposes metrics for scraping. It works without Enabled.
	Prometheus bool `yaml:"prometheus" mapstructure:"prometheus"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be within [0, 1] (got: %v)", c.SampleRate)
	}
	if c.Interval < 0 {
		return fmt.Errorf("telemetry.interval must be positive")
	}
	return nil
}

// Telemetry holds the providers Init installed.
type Telemetry struct {
	shutdown []func(context.Context) error
	metrics  http.Handler
}

// Shutdown flushes and stops the installed providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range t.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

// MetricsHandler returns the Prometheus scrape handler, or nil when
// Prometheus export is off.
func (t *Telemetry) MetricsHandler() http.Handler {
	return t.metrics
}

// Init installs the tracer and OTLP meter when cfg.Enabled is set and the
// Prometheus reader when cfg.Prometheus is set. With neither it installs
// nothing.
func Init(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*Telemetry, error) {
	t := &Telemetry{}
	if !cfg.Enabled && !cfg.Prometheus {
		return t, nil
	}
	cfg.ApplyDefaults()

	if cfg.Enabled {
		tp, err := InitTracer(ctx, TracerConfig{
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Endpoint,
			Insecure:       cfg.Insecure,
			SampleRate:     cfg.SampleRate,
		})
		if err != nil {
			return nil, err
		}
		t.shutdown = append(t.shutdown, tp.Shutdown)
	}

	mp, handler, err := InitMeter(ctx, &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLP:           cfg.Enabled,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		Interval:       cfg.Interval,
		Prometheus:     cfg.Prometheus,
	})
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	t.shutdown = append(t.shutdown, mp.Shutdown)
	t.metrics = handler
	return t, nil
}
