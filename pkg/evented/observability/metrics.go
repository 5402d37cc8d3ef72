package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records event dispatch metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEmit records a synchronous emission with its duration and
	// error status.
	RecordEmit(ctx context.Context, event string, duration time.Duration, err error)

	// RecordDispatch records a completed series dispatch run.
	// mode is "settle" or "fulfill".
	RecordDispatch(ctx context.Context, mode string, duration time.Duration, err error)

	// RecordListenerFailure records a listener error swallowed by a
	// best-effort dispatch run.
	RecordListenerFailure(ctx context.Context, event string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	emits            metric.Int64Counter
	emitLatency      metric.Float64Histogram
	dispatches       metric.Int64Counter
	dispatchLatency  metric.Float64Histogram
	listenerFailures metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("evented")

	emits, err := meter.Int64Counter("evented.emits",
		metric.WithDescription("Number of synchronous emissions"),
	)
	if err != nil {
		return nil, err
	}

	emitLatency, err := meter.Float64Histogram("evented.emit.latency_ms",
		metric.WithDescription("Synchronous emission latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	dispatches, err := meter.Int64Counter("evented.dispatches",
		metric.WithDescription("Number of series dispatch runs"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("evented.dispatch.latency_ms",
		metric.WithDescription("Series dispatch run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	listenerFailures, err := meter.Int64Counter("evented.listener.failures",
		metric.WithDescription("Number of listener errors swallowed by best-effort dispatch"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		emits:            emits,
		emitLatency:      emitLatency,
		dispatches:       dispatches,
		dispatchLatency:  dispatchLatency,
		listenerFailures: listenerFailures,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using noop recorder",
			slog.String("error", err.Error()),
		)
		return NoopMetrics{}
	}
	return m
}

// RecordEmit records a synchronous emission.
func (m *otelMetrics) RecordEmit(ctx context.Context, event string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("event", event),
		attribute.Bool("error", err != nil),
	)
	m.emits.Add(ctx, 1, attrs)
	m.emitLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordDispatch records a completed series dispatch run.
func (m *otelMetrics) RecordDispatch(ctx context.Context, mode string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("error", err != nil),
	)
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordListenerFailure records a swallowed listener error.
func (m *otelMetrics) RecordListenerFailure(ctx context.Context, event string) {
	m.listenerFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
	))
}
