package config

import (
	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"
)

// Session represents the top-level structure of a rewind session YAML file:
// the store configuration plus, for the CLI, a scripted sequence of updates
// and navigation commands to replay against it.
type Session struct {
	Name          string `yaml:"name"`
	SchemaVersion string `yaml:"schemaVersion"`

	// History configures the store's history engine. Optional; defaults
	// apply when absent.
	History *HistoryConfig `yaml:"history,omitempty"`

	// InitialState seeds the store's tracked data before any update runs.
	InitialState map[string]interface{} `yaml:"initial_state,omitempty"`

	// Updates are replayed in order through the store's dispatcher.
	Updates []UpdateStep `yaml:"updates,omitempty"`

	// Navigation commands are replayed in order after the updates.
	Navigation []NavigationStep `yaml:"navigation,omitempty"`

	// FilePath is an internal field for storing the source file path for
	// context in logging and error messages. It is not parsed from the YAML.
	FilePath string `yaml:"-"`
}

// HistoryConfig mirrors the engine construction parameters that may be set
// from a session document.
type HistoryConfig struct {
	MaxHistory      int              `yaml:"max_history,omitempty"`
	AutoArchive     *bool            `yaml:"auto_archive,omitempty"`
	InitialPosition int              `yaml:"initial_position,omitempty"`
	InitialPatches  []hist.ChangeSet `yaml:"initial_patches,omitempty"`
}

// UpdateStep is one scripted dispatch. Exactly one of the fields must be
// set: Set merges the given keys into the current data (replace=false),
// Replace swaps the entire data snapshot (replace=true).
type UpdateStep struct {
	Set     map[string]interface{} `yaml:"set,omitempty"`
	Replace map[string]interface{} `yaml:"replace,omitempty"`
}

// NavigationStep is one scripted control operation. Exactly one of the
// fields must be set.
type NavigationStep struct {
	Back    *int `yaml:"back,omitempty"`
	Forward *int `yaml:"forward,omitempty"`
	Go      *int `yaml:"go,omitempty"`
	Reset   bool `yaml:"reset,omitempty"`
	Archive bool `yaml:"archive,omitempty"`
}

// EngineConfig converts the session's history block into an engine Config,
// leaving zero values for the store factory's defaults to fill.
func (s *Session) EngineConfig() (maxHistory int, autoArchive *bool, initialPosition int, initialPatches []hist.ChangeSet) {
	if s.History == nil {
		return 0, nil, 0, nil
	}
	return s.History.MaxHistory, s.History.AutoArchive, s.History.InitialPosition, s.History.InitialPatches
}
