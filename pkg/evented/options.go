package evented

import (
	"log/slog"

	"github.com/randalmurphal/evented/pkg/evented/observability"
)

// Option configures an Evented component at construction.
type Option func(*Evented)

// WithLogger sets the structured logger. When nil (the default), nothing
// is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(ev *Evented) {
		ev.logger = logger
	}
}

// WithMetrics sets the metrics recorder. The default is a no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(ev *Evented) {
		if m != nil {
			ev.metrics = m
		}
	}
}

// WithMaxListeners sets a warn threshold for listeners per event. When a
// registration pushes an event past the threshold, a warning is logged;
// registration itself always succeeds. Zero (the default) disables the
// check.
func WithMaxListeners(n int) Option {
	return func(ev *Evented) {
		ev.maxListeners = n
	}
}

// WithErrorHandler sets the handler invoked for every listener error
// swallowed by SettleInSeries.
func WithErrorHandler(h ErrorHandler) Option {
	return func(ev *Evented) {
		ev.onError = h
	}
}

// listenerConfig holds per-registration settings.
type listenerConfig struct {
	binding any
}

// ListenerOption configures a single listener registration.
type ListenerOption func(*listenerConfig)

// WithBinding overrides the binding a listener is registered and invoked
// with. The same binding must be supplied to Off to remove the listener.
func WithBinding(binding any) ListenerOption {
	return func(cfg *listenerConfig) {
		cfg.binding = binding
	}
}
