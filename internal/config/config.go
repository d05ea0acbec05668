// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package config

import (
	"time"

	"github.com/tomtom215/fraudscope/internal/detection"
)

// Config holds all application configuration
type Config struct {
	Dataset   DatasetConfig   `koanf:"dataset"`
	Database  DatabaseConfig  `koanf:"database"`
	Import    ImportConfig    `koanf:"import"`
	Detection DetectionConfig `koanf:"detection"`
	Reports   ReportsConfig   `koanf:"reports"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatasetConfig points at the transactions CSV.
type DatasetConfig struct {
	Path string `koanf:"path"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	// Path is the DuckDB file. ":memory:" keeps everything in memory.
	Path                   string        `koanf:"path"`
	MaxMemory              string        `koanf:"max_memory"`
	Threads                int           `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool          `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
	OpenTimeout            time.Duration `koanf:"open_timeout"`             // How long to retry a locked database file
	SkipIndexes            bool          `koanf:"skip_indexes"`             // Skip index creation (tests)
}

// ImportConfig holds CSV import settings
type ImportConfig struct {
	BatchSize int `koanf:"batch_size"`

	// MaxLoggedSkips caps how many skipped rows are logged individually.
	// All skipped rows are still counted.
	MaxLoggedSkips int `koanf:"max_logged_skips"`

	// ProgressPath is the BadgerDB directory for resumable imports.
	// Empty, or an in-memory database, keeps progress in memory.
	ProgressPath string `koanf:"progress_path"`

	// Fresh discards saved progress and truncates the transactions table.
	Fresh bool `koanf:"fresh"`
}

// Detection engines.
const (
	EngineScan = "scan"
	EngineSQL  = "sql"
)

// DetectionConfig holds anomaly pair detector settings
type DetectionConfig struct {
	// Engine selects the in-process scan or the DuckDB self-join.
	Engine string `koanf:"engine"`

	RapidWindow   time.Duration `koanf:"rapid_window"`
	GeoWindow     time.Duration `koanf:"geo_window"`
	DistanceMiles float64       `koanf:"distance_miles"`

	// Limit caps each result list. 0 returns every pair.
	Limit int `koanf:"limit"`

	// Workers is the number of goroutines for the scan engine (0 or 1 = serial).
	Workers int `koanf:"workers"`

	// Overrides is a JSON object applied to the detector after the fields
	// above, e.g. {"distance_miles": 750, "limit": 50}.
	Overrides string `koanf:"overrides"`
}

// DetectorConfig converts the section into a detection.Config.
func (d DetectionConfig) DetectorConfig() detection.Config {
	return detection.Config{
		RapidWindowMinutes: int(d.RapidWindow / time.Minute),
		GeoWindowMinutes:   int(d.GeoWindow / time.Minute),
		DistanceMiles:      d.DistanceMiles,
		Limit:              d.Limit,
		Workers:            d.Workers,
	}
}

// ReportsConfig holds aggregate report settings
type ReportsConfig struct {
	OutputDir string `koanf:"output_dir"`

	// StateLimit caps the by-state report (0 = all states).
	StateLimit int `koanf:"state_limit"`

	RepeatMinFrauds   int `koanf:"repeat_min_frauds"`
	MerchantMinTxns   int `koanf:"merchant_min_txns"`
	MerchantMinFrauds int `koanf:"merchant_min_frauds"`

	// PatternLimit caps the repeat-card and high-risk-merchant reports.
	PatternLimit int `koanf:"pattern_limit"`

	// Console prints the report tables to stdout.
	Console bool `koanf:"console"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	// TextfilePath is a node_exporter textfile written at the end of a run.
	// Empty disables the file.
	TextfilePath string `koanf:"textfile_path"`
}

// LoggingConfig holds logging configuration for zerolog
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
