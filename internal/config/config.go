// Package config handles run configuration: YAML parsing, defaults
// and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"paystorm/internal/concern"
)

// Mode selects the workload shape.
type Mode string

const (
	// ModeLoad writes records and reads each one straight back.
	ModeLoad Mode = "load"
	// ModeQuery reads random records from an existing data set.
	ModeQuery Mode = "query"
)

// Run is the immutable configuration for one run. It is created once
// at startup and shared read-only by every worker.
type Run struct {
	URI          string        `yaml:"uri"`
	Database     string        `yaml:"database"`
	Collection   string        `yaml:"collection"`
	Workers      int           `yaml:"workers"`
	TotalRecords int           `yaml:"totalRecords"`
	WriteConcern string        `yaml:"writeConcern"`
	ReadConcern  string        `yaml:"readConcern"`
	SampleRate   float64       `yaml:"sampleRate"`
	LogPath      string        `yaml:"logPath"`
	Mode         Mode          `yaml:"mode"`
	OpTimeout    time.Duration `yaml:"opTimeout"`
	Seed         int64         `yaml:"seed"`
	Rate         int           `yaml:"rate"`
}

// Default returns the baseline configuration; YAML and flags layer on
// top of it.
func Default() Run {
	return Run{
		URI:          "mongodb://localhost:27017",
		Database:     "fs",
		Collection:   "payments",
		Workers:      2,
		TotalRecords: 1000000,
		WriteConcern: concern.WriteAcknowledged,
		ReadConcern:  concern.ReadLocal,
		SampleRate:   0.01,
		LogPath:      "processing-output.log",
		Mode:         ModeLoad,
		OpTimeout:    2 * time.Second,
		Seed:         1,
		Rate:         0,
	}
}

// Load reads a YAML configuration file over the given base config.
func Load(path string, base Run) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config file: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// ConfigError reports an invalid configuration value. Fatal: the run
// never starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}

// Validate checks the configuration before any worker starts.
func (r Run) Validate() error {
	if r.URI == "" {
		return &ConfigError{Field: "uri", Reason: "must not be empty"}
	}
	if r.Database == "" {
		return &ConfigError{Field: "database", Reason: "must not be empty"}
	}
	if r.Collection == "" {
		return &ConfigError{Field: "collection", Reason: "must not be empty"}
	}
	if r.Workers < 1 {
		return &ConfigError{Field: "workers", Reason: "must be >= 1"}
	}
	if r.TotalRecords < 1 {
		return &ConfigError{Field: "totalRecords", Reason: "must be >= 1"}
	}
	if r.TotalRecords%r.Workers != 0 {
		return &ConfigError{
			Field:  "totalRecords",
			Reason: fmt.Sprintf("(%d) must divide evenly by workers (%d)", r.TotalRecords, r.Workers),
		}
	}
	if r.SampleRate < 0 || r.SampleRate > 1 {
		return &ConfigError{Field: "sampleRate", Reason: "must be between 0 and 1"}
	}
	if r.LogPath == "" {
		return &ConfigError{Field: "logPath", Reason: "must not be empty"}
	}
	if r.Mode != ModeLoad && r.Mode != ModeQuery {
		return &ConfigError{Field: "mode", Reason: fmt.Sprintf("%q must be %q or %q", r.Mode, ModeLoad, ModeQuery)}
	}
	if r.OpTimeout <= 0 {
		return &ConfigError{Field: "opTimeout", Reason: "must be positive"}
	}
	if r.Rate < 0 {
		return &ConfigError{Field: "rate", Reason: "must be >= 0"}
	}
	return nil
}

// RecordsPerWorker returns each worker's share of the total. Only
// meaningful after Validate has confirmed even division.
func (r Run) RecordsPerWorker() int {
	return r.TotalRecords / r.Workers
}
