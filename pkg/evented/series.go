package evented

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/evented/pkg/evented/observability"
)

// ListenerSource yields the ordered listener list for an event.
// *Evented satisfies it.
type ListenerSource interface {
	Listeners(event string) []Listener
}

// FailureObserver is implemented by listener sources that want to observe
// errors swallowed by SettleInSeries. *Evented satisfies it.
type FailureObserver interface {
	OnDispatchError(ctx context.Context, derr *DispatchError)
}

// metricsSource is implemented by sources carrying a metrics recorder.
type metricsSource interface {
	Metrics() observability.MetricsRecorder
}

// SettleInSeries invokes every listener of event strictly one after
// another, forwarding args: listener n+1 does not start until listener n
// has returned. Every listener is attempted regardless of earlier
// failures; errors are swallowed after being reported to the source's
// FailureObserver hook, so a misbehaving listener cannot halt the others.
//
// The listener list is snapshotted once at the start of the run.
func SettleInSeries(ctx context.Context, src ListenerSource, event string, args ...any) {
	listeners := src.Listeners(event)
	if len(listeners) == 0 {
		return
	}

	id := newDispatchID()
	start := time.Now()
	ctx, span := observability.StartDispatchSpan(ctx, "settle", event, id)

	for i, l := range listeners {
		if err := invoke(ctx, l, args); err != nil {
			observability.AddListenerErrorEvent(ctx, i, err)
			if obs, ok := src.(FailureObserver); ok {
				obs.OnDispatchError(ctx, &DispatchError{
					Event:      event,
					DispatchID: id,
					Listener:   i,
					Err:        err,
				})
			}
		}
	}

	observability.EndSpanWithError(span, nil)
	recordDispatch(ctx, src, "settle", time.Since(start), nil)
}

// FulfillInSeries invokes every listener of event strictly one after
// another, forwarding args, and aborts on the first failure: the failing
// listener's error is returned unmodified and no further listeners are
// invoked. A listener that returns nil proceeds directly to the next one.
//
// The listener list is snapshotted once at the start of the run.
func FulfillInSeries(ctx context.Context, src ListenerSource, event string, args ...any) error {
	listeners := src.Listeners(event)
	if len(listeners) == 0 {
		return nil
	}

	id := newDispatchID()
	start := time.Now()
	ctx, span := observability.StartDispatchSpan(ctx, "fulfill", event, id)

	for i, l := range listeners {
		if err := invoke(ctx, l, args); err != nil {
			observability.AddListenerErrorEvent(ctx, i, err)
			observability.EndSpanWithError(span, err)
			recordDispatch(ctx, src, "fulfill", time.Since(start), err)
			return err
		}
	}

	observability.EndSpanWithError(span, nil)
	recordDispatch(ctx, src, "fulfill", time.Since(start), nil)
	return nil
}

func invoke(ctx context.Context, l Listener, args []any) error {
	if l.Callback == nil {
		return nil
	}
	return l.Callback(ctx, l.Binding, args...)
}

func recordDispatch(ctx context.Context, src ListenerSource, mode string, duration time.Duration, err error) {
	if ms, ok := src.(metricsSource); ok {
		ms.Metrics().RecordDispatch(ctx, mode, duration, err)
	}
}

// newDispatchID returns a short identifier for one dispatch run, used in
// spans, logs, and journal records.
func newDispatchID() string {
	return fmt.Sprintf("dsp-%s", uuid.New().String()[:8])
}
