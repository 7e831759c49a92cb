package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/voicegate/logger"
)

// MeterConfig configures the meter provider readers. OTLP pushes to
// Endpoint every Interval; Prometheus exposes a pull handler.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLP           bool
	Endpoint       string
	Insecure       bool
	Interval       time.Duration
	Prometheus     bool
}

// InitMeter installs a meter provider as the global one. The returned
// handler serves the Prometheus registry and is nil unless cfg.Prometheus
// is set.
func InitMeter(ctx context.Context, cfg *MeterConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("creating resource: %w", err)
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.OTLP {
		expOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			expOpts = append(expOpts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, expOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("creating metric exporter: %w", err)
		}
		var readerOpts []sdkmetric.PeriodicReaderOption
		if cfg.Interval > 0 {
			readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)))
	}

	var handler http.Handler
	if cfg.Prometheus {
		reg := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
		if err != nil {
			return nil, nil, fmt.Errorf("creating prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(exporter))
		handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"otlp", cfg.OTLP,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
		"prometheus", cfg.Prometheus,
	))
	return mp, handler, nil
}

// Metrics holds the instruments for outbound calls (ASR exchanges, TTS and
// Ollama requests) and inbound HTTP requests.
type Metrics struct {
	calls        metric.Int64Counter
	callDuration metric.Float64Histogram
	httpRequests metric.Int64Counter
	httpDuration metric.Float64Histogram
	httpInFlight metric.Int64UpDownCounter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	calls, err := meter.Int64Counter("asr.requests",
		metric.WithDescription("Outbound engine and provider calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating asr.requests counter: %w", err)
	}
	callDuration, err := meter.Float64Histogram("asr.request.duration",
		metric.WithDescription("Duration of outbound calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating asr.request.duration histogram: %w", err)
	}
	httpRequests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Inbound HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.requests counter: %w", err)
	}
	httpDuration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("Inbound HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.duration histogram: %w", err)
	}
	httpInFlight, err := meter.Int64UpDownCounter("http.server.active",
		metric.WithDescription("Inbound HTTP requests in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.active counter: %w", err)
	}

	return &Metrics{
		calls:        calls,
		callDuration: callDuration,
		httpRequests: httpRequests,
		httpDuration: httpDuration,
		httpInFlight: httpInFlight,
	}, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns instruments on the global meter provider. The
// global provider delegates to whatever Init installs later, so callers may
// grab this before telemetry is initialized.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(otel.Meter(instrumentationName))
		if err != nil {
			logger.Warn("metrics unavailable", logger.Fields(logger.FieldError, err))
			return
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordCall records one outbound call. outcome is "ok" or an error kind
// such as "timeout" or "engine".
func (m *Metrics) RecordCall(ctx context.Context, operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrOperation, operation),
		attribute.String(AttrOutcome, outcome),
	))
	m.callDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrOperation, operation),
	))
}

// RecordRequestStart marks an inbound request in flight.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.httpInFlight.Add(ctx, 1)
}

// RecordRequestEnd records a finished inbound request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpInFlight.Add(ctx, -1)
	m.httpRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
	m.httpDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
