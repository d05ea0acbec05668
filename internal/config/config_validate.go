// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/fraudscope/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateReports(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("DATASET_PATH is required")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS cannot be negative")
	}
	if c.Database.OpenTimeout < 0 {
		return fmt.Errorf("DUCKDB_OPEN_TIMEOUT cannot be negative")
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.BatchSize < 1 || c.Import.BatchSize > 100000 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be between 1 and 100000")
	}
	if c.Import.MaxLoggedSkips < 0 {
		return fmt.Errorf("IMPORT_MAX_LOGGED_SKIPS cannot be negative")
	}
	return nil
}

// validateDetection requires whole-minute windows since the detector is
// configured in minutes.
func (c *Config) validateDetection() error {
	d := c.Detection

	switch d.Engine {
	case EngineScan, EngineSQL:
	default:
		return fmt.Errorf("DETECTION_ENGINE must be %q or %q, got %q", EngineScan, EngineSQL, d.Engine)
	}

	if err := validateWindow(d.RapidWindow, "RAPID_WINDOW"); err != nil {
		return err
	}
	if err := validateWindow(d.GeoWindow, "GEO_WINDOW"); err != nil {
		return err
	}
	if d.DistanceMiles < 0 || math.IsNaN(d.DistanceMiles) || math.IsInf(d.DistanceMiles, 0) {
		return fmt.Errorf("GEO_DISTANCE_MILES must be a finite non-negative number")
	}
	if d.Limit < 0 {
		return fmt.Errorf("DETECTION_LIMIT cannot be negative (use 0 for no limit)")
	}
	if d.Workers < 0 || d.Workers > 256 {
		return fmt.Errorf("DETECTION_WORKERS must be between 0 and 256")
	}
	return nil
}

func validateWindow(w time.Duration, name string) error {
	if w < time.Minute {
		return fmt.Errorf("%s must be at least 1m, got %s", name, w)
	}
	if w%time.Minute != 0 {
		return fmt.Errorf("%s must be a whole number of minutes, got %s", name, w)
	}
	return nil
}

func (c *Config) validateReports() error {
	r := c.Reports
	if strings.TrimSpace(r.OutputDir) == "" {
		return fmt.Errorf("REPORTS_OUTPUT_DIR is required")
	}
	if r.StateLimit < 0 {
		return fmt.Errorf("REPORTS_STATE_LIMIT cannot be negative")
	}
	if r.RepeatMinFrauds < 1 {
		return fmt.Errorf("REPORTS_REPEAT_MIN_FRAUDS must be at least 1")
	}
	if r.MerchantMinTxns < 1 || r.MerchantMinFrauds < 1 {
		return fmt.Errorf("REPORTS_MERCHANT_MIN_TXNS and REPORTS_MERCHANT_MIN_FRAUDS must be at least 1")
	}
	if r.PatternLimit < 1 {
		return fmt.Errorf("REPORTS_PATTERN_LIMIT must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
