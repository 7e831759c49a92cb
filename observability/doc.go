// Package observability wires OpenTelemetry tracing and metrics.
//
// Init installs OTLP/HTTP trace and metric exporters when telemetry is
// enabled, and a Prometheus reader when telemetry.prometheus is set.
// Instruments and spans go through the global providers, so they are no-ops
// when neither is on.
//
//	tel, err := observability.Init(ctx, cfg.Telemetry, "voicegate", version.Short())
//	defer tel.Shutdown(ctx)
//	srv.RegisterMetrics(tel.MetricsHandler())
//
//	ctx, span := observability.StartSpan(ctx, "asr.recognize")
//	defer span.End()
package observability
