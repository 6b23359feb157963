// Package observability groups the engine's logging, Prometheus metrics and
// OpenTelemetry tracing.
//
// Subpackages:
//   - logging: slog construction and request-scoped loggers
//   - metrics: Prometheus collectors for HTTP, revisions and auto-publish
//   - tracing: span helpers and HTTP middleware
package observability
