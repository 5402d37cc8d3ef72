package evented

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/evented/pkg/evented/observability"
)

// ErrorHandler observes listener failures swallowed by SettleInSeries.
// The error is delivered after the failing listener has returned; the
// dispatch run has already moved on.
type ErrorHandler func(ctx context.Context, derr *DispatchError)

// Evented grants event capability to its owner. Hold one as a field or
// embed it; every instance owns an independent event-name to Notifier
// mapping.
type Evented struct {
	owner        any
	logger       *slog.Logger
	metrics      observability.MetricsRecorder
	maxListeners int
	onError      ErrorHandler

	mu        sync.RWMutex
	notifiers map[string]*Notifier
}

// New creates an Evented component. The owner becomes the default binding
// for listeners registered without one; pass nil to default bindings to
// the component itself.
func New(owner any, opts ...Option) *Evented {
	ev := &Evented{
		owner:     owner,
		metrics:   observability.NoopMetrics{},
		notifiers: make(map[string]*Notifier),
	}
	for _, opt := range opts {
		opt(ev)
	}
	if ev.owner == nil {
		ev.owner = ev
	}
	return ev
}

// On registers cb for event. The binding defaults to the owner; override
// it with WithBinding. The per-event Notifier is created lazily on first
// registration.
func (ev *Evented) On(event string, cb Callback, opts ...ListenerOption) {
	n := ev.notifier(event, true)
	n.AddListener(cb, ev.binding(opts))
	ev.checkCrowded(event, n)
}

// One registers cb for event with at-most-once semantics: the first
// emission that reaches it removes the registration before invoking cb,
// so later emissions never see it. Off(event, cb) removes a pending
// one-shot the same way it removes a regular listener.
func (ev *Evented) One(event string, cb Callback, opts ...ListenerOption) {
	n := ev.notifier(event, true)

	e := &entry{id: callbackID(cb), binding: ev.binding(opts)}
	var once sync.Once
	e.fn = func(ctx context.Context, binding any, args ...any) error {
		var err error
		once.Do(func() {
			n.removeEntry(e)
			err = cb(ctx, binding, args...)
		})
		return err
	}
	n.add(e)
	ev.checkCrowded(event, n)
}

// Off removes listeners registered for event. With a nil callback the
// event's entire Notifier is dropped, all listeners included. With a
// callback, every matching (callback, binding) pair is removed, binding
// defaulting to the owner. Unknown events and unmatched pairs are a
// no-op, never an error.
func (ev *Evented) Off(event string, cb Callback, opts ...ListenerOption) {
	if cb == nil {
		ev.mu.Lock()
		delete(ev.notifiers, event)
		ev.mu.Unlock()
		return
	}

	n := ev.notifier(event, false)
	if n == nil {
		return
	}
	n.RemoveListener(cb, ev.binding(opts))
}

// Emit synchronously dispatches to every listener of event in
// registration order, forwarding args. It returns only after every
// invoked listener has returned. The first listener error aborts the
// emission and is returned unmodified. Emitting an event with no
// listeners is a no-op.
func (ev *Evented) Emit(ctx context.Context, event string, args ...any) error {
	n := ev.notifier(event, false)
	if n == nil {
		return nil
	}

	start := time.Now()
	listeners := n.Len()
	err := n.Emit(ctx, args...)
	duration := time.Since(start)

	ev.metrics.RecordEmit(ctx, event, duration, err)
	observability.LogEmit(ev.logger, event, listeners, float64(duration.Milliseconds()), err)
	return err
}

// Listeners returns the ordered listener list for event, or an empty
// slice when none are registered.
func (ev *Evented) Listeners(event string) []Listener {
	n := ev.notifier(event, false)
	if n == nil {
		return []Listener{}
	}
	return n.Listeners()
}

// ListenerCount returns the number of listeners registered for event.
func (ev *Evented) ListenerCount(event string) int {
	n := ev.notifier(event, false)
	if n == nil {
		return 0
	}
	return n.Len()
}

// EventNames returns the events that currently have a Notifier.
func (ev *Evented) EventNames() []string {
	ev.mu.RLock()
	defer ev.mu.RUnlock()

	names := make([]string, 0, len(ev.notifiers))
	for name := range ev.notifiers {
		names = append(names, name)
	}
	return names
}

// Clear drops every Notifier and all registered listeners.
func (ev *Evented) Clear() {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.notifiers = make(map[string]*Notifier)
}

// Metrics returns the component's metrics recorder. Never nil.
func (ev *Evented) Metrics() observability.MetricsRecorder {
	return ev.metrics
}

// OnDispatchError implements FailureObserver: it logs the swallowed
// failure, records it, and forwards it to the configured error handler.
func (ev *Evented) OnDispatchError(ctx context.Context, derr *DispatchError) {
	observability.LogDispatchError(ev.logger, derr.Event, derr.DispatchID, derr.Listener, derr.Err)
	ev.metrics.RecordListenerFailure(ctx, derr.Event)
	if ev.onError != nil {
		ev.onError(ctx, derr)
	}
}

// notifier returns the Notifier for event, creating it when create is set.
func (ev *Evented) notifier(event string, create bool) *Notifier {
	ev.mu.RLock()
	n := ev.notifiers[event]
	ev.mu.RUnlock()
	if n != nil || !create {
		return n
	}

	ev.mu.Lock()
	defer ev.mu.Unlock()
	if n = ev.notifiers[event]; n == nil {
		n = NewNotifier()
		ev.notifiers[event] = n
	}
	return n
}

func (ev *Evented) binding(opts []ListenerOption) any {
	cfg := listenerConfig{binding: ev.owner}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.binding
}

func (ev *Evented) checkCrowded(event string, n *Notifier) {
	if ev.maxListeners > 0 && n.Len() > ev.maxListeners {
		observability.LogListenerOverflow(ev.logger, event, n.Len(), ev.maxListeners)
	}
}
