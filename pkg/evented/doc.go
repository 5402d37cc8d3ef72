/*
Package evented adds publish/subscribe event capability to arbitrary types
through composition.

# Overview

An Evented component owns an ordered listener registry per event name and
exposes the On/One/Off/Emit/Listeners capability set. Any type gains event
capability by embedding the component or holding it as a field; there is no
runtime class patching, so applying the capability "twice" is impossible
by construction.

	type Source struct {
	    *evented.Evented
	    Name string
	}

	src := &Source{Name: "feed"}
	src.Evented = evented.New(src)

	src.On("update", func(ctx context.Context, binding any, args ...any) error {
	    fmt.Println("update:", args)
	    return nil
	})

	src.Emit(context.Background(), "update", "hello")

# Dispatch policies

Emit is fully synchronous: listeners run in registration order and the
first error aborts the emission and is returned to the caller.

The series helpers drive the same listener list through a sequential
asynchronous pipeline with two failure policies:

  - SettleInSeries attempts every listener and swallows individual
    failures (best-effort broadcast). Swallowed errors are reported to the
    component's error handler, where they can be logged or journaled.
  - FulfillInSeries aborts on the first failure and returns that error
    unmodified.

Both preserve registration order and never interleave listeners: listener
n+1 does not start until listener n has returned.

# Observability

Components accept a *slog.Logger and an OpenTelemetry metrics recorder via
options. The series helpers emit a trace span per dispatch run. All of it
is opt-in; the zero configuration is silent.
*/
package evented
