// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fraudscope/config.yaml",
	"/etc/fraudscope/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvFile is loaded into the environment before the env layer, if present.
var DotEnvFile = ".env"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Path: "data/fraudTest.csv",
		},
		Database: DatabaseConfig{
			Path:                   "data/fraud.duckdb",
			MaxMemory:              "2GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
			OpenTimeout:            30 * time.Second,
		},
		Import: ImportConfig{
			BatchSize:      5000,
			MaxLoggedSkips: 20,
			ProgressPath:   "data/import_progress",
			Fresh:          false,
		},
		Detection: DetectionConfig{
			Engine:        EngineScan,
			RapidWindow:   10 * time.Minute,
			GeoWindow:     60 * time.Minute,
			DistanceMiles: 500,
			Limit:         20,
			Workers:       1,
		},
		Reports: ReportsConfig{
			OutputDir:         "outputs",
			StateLimit:        15,
			RepeatMinFrauds:   3,
			MerchantMinTxns:   20,
			MerchantMinFrauds: 3,
			PatternLimit:      20,
			Console:           true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting (.env included)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority).
	// godotenv never overrides variables that are already set.
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads path into the process environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Dataset
	"dataset_path": "dataset.path",

	// Database mappings
	"duckdb_path":                     "database.path",
	"duckdb_max_memory":               "database.max_memory",
	"duckdb_threads":                  "database.threads",
	"duckdb_preserve_insertion_order": "database.preserve_insertion_order",
	"duckdb_open_timeout":             "database.open_timeout",
	"duckdb_skip_indexes":             "database.skip_indexes",

	// Import mappings
	"import_batch_size":       "import.batch_size",
	"import_max_logged_skips": "import.max_logged_skips",
	"import_progress_path":    "import.progress_path",
	"import_fresh":            "import.fresh",

	// Detection mappings
	"detection_engine":    "detection.engine",
	"rapid_window":        "detection.rapid_window",
	"geo_window":          "detection.geo_window",
	"geo_distance_miles":  "detection.distance_miles",
	"detection_limit":     "detection.limit",
	"detection_workers":   "detection.workers",
	"detection_overrides": "detection.overrides",

	// Report mappings
	"reports_output_dir":          "reports.output_dir",
	"reports_state_limit":         "reports.state_limit",
	"reports_repeat_min_frauds":   "reports.repeat_min_frauds",
	"reports_merchant_min_txns":   "reports.merchant_min_txns",
	"reports_merchant_min_frauds": "reports.merchant_min_frauds",
	"reports_pattern_limit":       "reports.pattern_limit",
	"reports_console":             "reports.console",

	// Metrics mappings
	"metrics_textfile_path": "metrics.textfile_path",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - GEO_DISTANCE_MILES -> detection.distance_miles
//   - LOG_LEVEL -> logging.level
//
// Unmapped keys return "" and are skipped, which prevents random environment
// variables from polluting config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
