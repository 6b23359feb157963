// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the globally registered tracer provider; without
// an SDK provider installed they are no-ops. HTTP handlers are wrapped with
// Middleware, and the revision and auto-publish flows open internal spans
// with StartSpan.
package tracing
