package evented_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/evented/pkg/evented"
)

func TestSettleInSeries_AttemptsEveryListener(t *testing.T) {
	f := newFeed("settle")
	var ran []string

	f.On("sync", func(_ context.Context, _ any, _ ...any) error {
		ran = append(ran, "ok1")
		return nil
	})
	f.On("sync", func(_ context.Context, _ any, _ ...any) error {
		ran = append(ran, "failing")
		return errors.New("midway failure")
	})
	f.On("sync", func(_ context.Context, _ any, _ ...any) error {
		ran = append(ran, "ok2")
		return nil
	})

	evented.SettleInSeries(context.Background(), f, "sync")
	assert.Equal(t, []string{"ok1", "failing", "ok2"}, ran)
}

func TestSettleInSeries_ReportsSwallowedErrors(t *testing.T) {
	boom := errors.New("boom")
	var reported []*evented.DispatchError

	f := newFeed("settle-report", evented.WithErrorHandler(
		func(_ context.Context, derr *evented.DispatchError) {
			reported = append(reported, derr)
		},
	))

	f.On("sync", func(_ context.Context, _ any, _ ...any) error { return nil })
	f.On("sync", func(_ context.Context, _ any, _ ...any) error { return boom })

	evented.SettleInSeries(context.Background(), f, "sync")

	require.Len(t, reported, 1)
	derr := reported[0]
	assert.Equal(t, "sync", derr.Event)
	assert.Equal(t, 1, derr.Listener)
	assert.Same(t, boom, derr.Err)
	assert.True(t, strings.HasPrefix(derr.DispatchID, "dsp-"))
}

func TestFulfillInSeries_ShortCircuitsOnFirstError(t *testing.T) {
	f := newFeed("fulfill")
	boom := errors.New("boom")
	var ran []string

	f.On("sync", func(_ context.Context, _ any, _ ...any) error {
		ran = append(ran, "ok1")
		return nil
	})
	f.On("sync", func(_ context.Context, _ any, _ ...any) error {
		ran = append(ran, "rejecting")
		return boom
	})
	f.On("sync", func(_ context.Context, _ any, _ ...any) error {
		ran = append(ran, "ok2")
		return nil
	})

	err := evented.FulfillInSeries(context.Background(), f, "sync")
	assert.Same(t, boom, err, "the listener's error passes through unmodified")
	assert.Equal(t, []string{"ok1", "rejecting"}, ran)
}

func TestFulfillInSeries_AllSucceed(t *testing.T) {
	f := newFeed("fulfill-ok")
	var calls int

	f.On("sync", func(_ context.Context, _ any, _ ...any) error {
		calls++
		return nil
	})
	f.On("sync", func(_ context.Context, _ any, _ ...any) error {
		calls++
		return nil
	})

	require.NoError(t, evented.FulfillInSeries(context.Background(), f, "sync"))
	assert.Equal(t, 2, calls)
}

func TestSeries_StrictlySequential(t *testing.T) {
	f := newFeed("sequential")
	var trace []string

	slow := func(label string) evented.Callback {
		return func(_ context.Context, _ any, _ ...any) error {
			trace = append(trace, label+":start")
			// Real asynchronous work: the callback blocks until it is done.
			done := make(chan struct{})
			go func() {
				time.Sleep(5 * time.Millisecond)
				close(done)
			}()
			<-done
			trace = append(trace, label+":end")
			return nil
		}
	}

	f.On("work", slow("a"), evented.WithBinding("a"))
	f.On("work", slow("b"), evented.WithBinding("b"))
	f.On("work", slow("c"), evented.WithBinding("c"))

	require.NoError(t, evented.FulfillInSeries(context.Background(), f, "work"))
	assert.Equal(t, []string{
		"a:start", "a:end",
		"b:start", "b:end",
		"c:start", "c:end",
	}, trace, "listener n+1 must not start before listener n returned")
}

func TestSeries_ForwardsArgsAndBinding(t *testing.T) {
	f := newFeed("forward")
	type seen struct {
		binding any
		args    []any
	}
	var got []seen

	cb := func(_ context.Context, binding any, args ...any) error {
		got = append(got, seen{binding: binding, args: args})
		return nil
	}
	f.On("sync", cb, evented.WithBinding("x"))
	f.On("sync", cb, evented.WithBinding("y"))

	evented.SettleInSeries(context.Background(), f, "sync", "payload", 7)

	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].binding)
	assert.Equal(t, "y", got[1].binding)
	assert.Equal(t, []any{"payload", 7}, got[0].args)
	assert.Equal(t, []any{"payload", 7}, got[1].args)
}

func TestSeries_OneShotAcrossRuns(t *testing.T) {
	f := newFeed("one-series")
	var calls int

	f.One("sync", func(_ context.Context, _ any, _ ...any) error {
		calls++
		return nil
	})

	evented.SettleInSeries(context.Background(), f, "sync")
	evented.SettleInSeries(context.Background(), f, "sync")
	assert.Equal(t, 1, calls)
}

func TestSeries_EmptyEventIsNoop(t *testing.T) {
	f := newFeed("quiet")
	assert.NotPanics(t, func() {
		evented.SettleInSeries(context.Background(), f, "nothing")
	})
	assert.NoError(t, evented.FulfillInSeries(context.Background(), f, "nothing"))
}

func TestFulfillInSeries_DoesNotReportToErrorHandler(t *testing.T) {
	var reported int
	f := newFeed("fulfill-silent", evented.WithErrorHandler(
		func(_ context.Context, _ *evented.DispatchError) { reported++ },
	))

	f.On("sync", func(_ context.Context, _ any, _ ...any) error {
		return errors.New("boom")
	})

	err := evented.FulfillInSeries(context.Background(), f, "sync")
	assert.Error(t, err)
	assert.Zero(t, reported, "fulfill propagates, it does not report")
}

func TestSeries_ContextReachesListeners(t *testing.T) {
	f := newFeed("ctx")
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	var got any
	f.On("sync", func(ctx context.Context, _ any, _ ...any) error {
		got = ctx.Value(ctxKey{})
		return nil
	})

	require.NoError(t, evented.FulfillInSeries(ctx, f, "sync"))
	assert.Equal(t, "marker", got)
}
