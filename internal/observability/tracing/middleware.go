package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"draftdesk/internal/handler/http/requestid"
	"draftdesk/internal/handler/http/responsewriter"
)

// Middleware continues the caller's W3C trace, if any, in a server span.
// The span is renamed to the matched ServeMux pattern once routing is done,
// so /articles/7/versions and /articles/8/versions share one span name.
// The trace ID is returned in X-Trace-Id.
func Middleware(next http.Handler) http.Handler {
	tracer := GetTracer()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		w.Header().Set("X-Trace-Id", span.SpanContext().TraceID().String())
		rw := responsewriter.Wrap(w)
		r = r.WithContext(ctx)
		next.ServeHTTP(rw, r)

		if r.Pattern != "" {
			span.SetName(r.Pattern)
		}
		attrs := []attribute.KeyValue{
			attribute.Int("http.status_code", rw.StatusCode()),
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
		}
		if id := requestid.FromContext(ctx); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}
		if rw.StatusCode() >= 500 {
			attrs = append(attrs, attribute.Bool("error", true))
			span.SetStatus(codes.Error, http.StatusText(rw.StatusCode()))
		}
		span.SetAttributes(attrs...)
	})
}
