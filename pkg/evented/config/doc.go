// Package config loads emitter settings from YAML or JSON files and maps
// them onto evented options.
//
// A settings file looks like:
//
//	max_listeners: 32
//	metrics: true
//	journal: ./journal.db
//
// Load it and apply it:
//
//	cfg, err := config.FromFile("evented.yaml")
//	if err != nil {
//	    return err
//	}
//	ev := evented.New(owner, config.SettingsFrom(cfg).Options()...)
package config
