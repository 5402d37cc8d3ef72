package config

import (
	"github.com/randalmurphal/evented/pkg/evented"
	"github.com/randalmurphal/evented/pkg/evented/observability"
)

// Settings captures emitter configuration loaded from a file.
type Settings struct {
	// MaxListeners is the warn threshold for listeners per event.
	// Zero disables the check.
	MaxListeners int

	// Metrics enables the OpenTelemetry metrics recorder.
	Metrics bool

	// Journal is the SQLite path for the dispatch-failure journal.
	// Empty disables journaling. Stores are opened by the caller, not
	// here; see the journal package.
	Journal string
}

// SettingsFrom extracts emitter settings from a Config.
func SettingsFrom(cfg Config) Settings {
	return Settings{
		MaxListeners: cfg.Int("max_listeners", 0),
		Metrics:      cfg.Bool("metrics", false),
		Journal:      cfg.String("journal", ""),
	}
}

// Options converts the settings into evented construction options.
// The journal path is not applied here since opening a store can fail;
// wire it with journal.NewSQLiteStore and evented.WithErrorHandler.
func (s Settings) Options() []evented.Option {
	var opts []evented.Option
	if s.MaxListeners > 0 {
		opts = append(opts, evented.WithMaxListeners(s.MaxListeners))
	}
	if s.Metrics {
		opts = append(opts, evented.WithMetrics(observability.NewMetricsRecorder()))
	}
	return opts
}
