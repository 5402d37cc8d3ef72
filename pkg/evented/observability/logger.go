// Package observability provides structured logging, metrics, and
// distributed tracing for event dispatch.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds dispatch context to a logger.
// Returns a new logger with event and dispatch_id fields.
func EnrichLogger(logger *slog.Logger, event, dispatchID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event", event),
		slog.String("dispatch_id", dispatchID),
	)
}

// LogEmit logs a completed synchronous emission.
func LogEmit(logger *slog.Logger, event string, listeners int, durationMs float64, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Error("emit aborted",
			slog.String("event", event),
			slog.Int("listeners", listeners),
			slog.Float64("duration_ms", durationMs),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("emit completed",
		slog.String("event", event),
		slog.Int("listeners", listeners),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDispatchError logs a listener failure swallowed by a best-effort
// dispatch run.
func LogDispatchError(logger *slog.Logger, event, dispatchID string, listener int, err error) {
	if logger == nil {
		return
	}
	logger.Warn("listener failed",
		slog.String("event", event),
		slog.String("dispatch_id", dispatchID),
		slog.Int("listener", listener),
		slog.String("error", err.Error()),
	)
}

// LogListenerOverflow warns that an event's listener count passed the
// configured threshold. Often a sign of a registration leak.
func LogListenerOverflow(logger *slog.Logger, event string, count, max int) {
	if logger == nil {
		return
	}
	logger.Warn("listener threshold exceeded",
		slog.String("event", event),
		slog.Int("listeners", count),
		slog.Int("max_listeners", max),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
