package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}

func TestEnrichLogger(t *testing.T) {
	logger, buf := newTestLogger()

	enriched := EnrichLogger(logger, "sync", "dsp-12345678")
	require.NotNil(t, enriched)
	enriched.Info("testing")

	out := buf.String()
	assert.Contains(t, out, "event=sync")
	assert.Contains(t, out, "dispatch_id=dsp-12345678")
}

func TestEnrichLogger_NilSafe(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "sync", "dsp-1"))
}

func TestLogEmit(t *testing.T) {
	t.Run("success logs at debug", func(t *testing.T) {
		logger, buf := newTestLogger()
		LogEmit(logger, "greet", 2, 1.5, nil)

		out := buf.String()
		assert.Contains(t, out, "emit completed")
		assert.Contains(t, out, "event=greet")
		assert.Contains(t, out, "listeners=2")
	})

	t.Run("failure logs at error", func(t *testing.T) {
		logger, buf := newTestLogger()
		LogEmit(logger, "greet", 2, 1.5, errors.New("boom"))

		out := buf.String()
		assert.Contains(t, out, "emit aborted")
		assert.Contains(t, out, "error=boom")
	})

	t.Run("nil logger is safe", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogEmit(nil, "greet", 0, 0, nil)
		})
	})
}

func TestLogDispatchError(t *testing.T) {
	logger, buf := newTestLogger()
	LogDispatchError(logger, "sync", "dsp-1", 3, errors.New("late failure"))

	out := buf.String()
	assert.Contains(t, out, "listener failed")
	assert.Contains(t, out, "listener=3")
	assert.Contains(t, out, "late failure")

	assert.NotPanics(t, func() {
		LogDispatchError(nil, "sync", "dsp-1", 0, errors.New("x"))
	})
}

func TestLogListenerOverflow(t *testing.T) {
	logger, buf := newTestLogger()
	LogListenerOverflow(logger, "tick", 33, 32)

	out := buf.String()
	assert.Contains(t, out, "listener threshold exceeded")
	assert.Contains(t, out, "listeners=33")
	assert.Contains(t, out, "max_listeners=32")

	assert.NotPanics(t, func() {
		LogListenerOverflow(nil, "tick", 1, 1)
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	elapsed := done()
	assert.GreaterOrEqual(t, elapsed, 0.0)
}
