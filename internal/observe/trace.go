package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// scopeName is the instrumentation scope attached to every span this module
// records.
const scopeName = "github.com/papercast-dev/papercast"

// StartSpan opens a span named after an operation ("pipeline.Render") on the
// globally registered tracer provider. Render runs are the spans of interest
// here: one per pipeline run, parented to the HTTP request that queued it.
// The caller ends the span.
func StartSpan(ctx context.Context, op string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(scopeName).Start(ctx, op, opts...)
}

// TraceID returns the hex trace id of the span in ctx, or the empty string
// when ctx carries none. It is surfaced to clients as the request id so a
// failed upload or render can be matched to its trace.
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanLogger stamps base with the trace and span ids from ctx so a run's log
// lines can be joined to its trace. A nil base stamps [slog.Default].
func SpanLogger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return base
	}
	return base.With(
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	)
}
