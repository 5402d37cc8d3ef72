package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the evented tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("evented")

// StartDispatchSpan starts a span for one series dispatch run.
// mode is "settle" or "fulfill".
//
// The span uses the global OTel tracer provider. Configure the provider
// before dispatching:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func StartDispatchSpan(ctx context.Context, mode, event, dispatchID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "evented.dispatch."+mode,
		trace.WithAttributes(
			attribute.String("dispatch.mode", mode),
			attribute.String("dispatch.event", event),
			attribute.String("dispatch.id", dispatchID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddListenerErrorEvent records a failing listener on the current span.
func AddListenerErrorEvent(ctx context.Context, index int, err error) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent("listener.error", trace.WithAttributes(
		attribute.Int("listener.index", index),
		attribute.String("listener.error", err.Error()),
	))
}
