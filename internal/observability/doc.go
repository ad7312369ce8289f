// Package observability groups the logging, metrics, tracing, and SLO
// instrumentation for the campaign relay.
//
// Subpackages:
//   - logging: slog-based JSON loggers with request ID propagation
//   - metrics: Prometheus counters and histograms for the draft/publish flow
//   - slo: service-level objective gauges for publish reliability
//   - tracing: OpenTelemetry span creation and W3C context propagation
//
// A handler typically combines them like this:
//
//	logger := logging.WithRequestID(ctx, h.Logger)
//	metrics.RecordPostDrafted("slack", "created")
package observability
