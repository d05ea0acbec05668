// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

// Package main is the entry point for the fraudscope batch analysis.
//
// A run loads the configured transactions CSV into DuckDB, runs the aggregate
// fraud reports and the anomaly pair detector, and writes the results.
//
// # Run Order
//
//  1. Configuration: defaults, optional config.yaml and environment (Koanf v2)
//  2. Logging: zerolog with a run id attached to every context logger
//  3. Database: DuckDB file or in-memory database
//  4. Import: resumable CSV import with BadgerDB progress tracking
//  5. Reports: overview, grouped reports, pattern reports and anomaly pairs
//  6. Metrics: Prometheus textfile for node_exporter
//
// # Configuration
//
// Settings are read from (highest priority wins):
//   - Environment variables (DATASET_PATH, DUCKDB_PATH, DETECTION_ENGINE,
//     DETECTION_OVERRIDES, ...)
//   - Config file (CONFIG_PATH or config.yaml)
//   - Built-in defaults
//
// # Example Usage
//
//	export DATASET_PATH=data/fraudTest.csv
//	export REPORTS_OUTPUT_DIR=outputs
//	./fraudscope
//
// Re-running against the same file-backed database skips the import when the
// dataset is unchanged. Set IMPORT_FRESH=true to reload it.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run. An import stops after its current batch
// and keeps its progress for the next run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/fraudscope/internal/config"
	"github.com/tomtom215/fraudscope/internal/database"
	csvimport "github.com/tomtom215/fraudscope/internal/import"
	"github.com/tomtom215/fraudscope/internal/logging"
	"github.com/tomtom215/fraudscope/internal/metrics"
	"github.com/tomtom215/fraudscope/internal/report"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = logging.ContextWithNewRunID(ctx)

	if err := run(ctx, cfg); err != nil {
		stop()
		logging.Ctx(ctx).Fatal().Err(err).Msg("Run failed")
	}
	stop()
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logging.Ctx(ctx)

	log.Info().
		Str("dataset", cfg.Dataset.Path).
		Str("db_path", cfg.Database.Path).
		Str("engine", cfg.Detection.Engine).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	log.Info().Str("path", db.Path()).Bool("in_memory", db.InMemory()).Msg("Database initialized successfully")

	progress, closeProgress, err := newProgressTracker(cfg, db.InMemory())
	if err != nil {
		return err
	}
	defer closeProgress()

	importer := csvimport.NewImporter(&cfg.Import, db, progress)
	stats, err := importer.Import(ctx, cfg.Dataset.Path)
	if err != nil {
		return err
	}
	summary := stats.ToSummary(importer.IsRunning())
	log.Info().
		Str("status", summary.Status).
		Float64("progress", summary.Progress).
		Int64("imported", summary.Imported).
		Int64("skipped", summary.Skipped).
		Int64("duplicates", summary.Duplicates).
		Msg("Dataset ready")

	runner, err := report.NewRunner(db, cfg, os.Stdout)
	if err != nil {
		return err
	}
	dc := runner.Detector().Config()
	log.Info().
		Int("rapid_window_minutes", dc.RapidWindowMinutes).
		Int("geo_window_minutes", dc.GeoWindowMinutes).
		Float64("distance_miles", dc.DistanceMiles).
		Int("limit", dc.Limit).
		Int("workers", dc.Workers).
		Msg("Anomaly detector configured")
	if _, err := runner.Run(ctx, stats); err != nil {
		return err
	}

	metrics.MarkRunComplete(time.Now())
	if cfg.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			log.Warn().Err(err).Str("path", cfg.Metrics.TextfilePath).Msg("Failed to write metrics textfile")
		}
	}

	return nil
}

// newProgressTracker returns a BadgerDB tracker when import.progress_path is
// set and the database outlives the process, otherwise an in-memory one.
func newProgressTracker(cfg *config.Config, inMemoryDB bool) (csvimport.ProgressTracker, func(), error) {
	if cfg.Import.ProgressPath == "" || inMemoryDB {
		logging.Info().Bool("in_memory_db", inMemoryDB).Msg("Import progress tracker created (in-memory)")
		return csvimport.NewInMemoryProgress(), func() {}, nil
	}

	progress, err := csvimport.OpenBadgerProgress(cfg.Import.ProgressPath)
	if err != nil {
		return nil, nil, err
	}
	logging.Info().Str("path", cfg.Import.ProgressPath).Msg("Import progress tracker created (BadgerDB - persistent)")

	return progress, func() {
		if err := progress.Close(); err != nil {
			logging.Err(err).Msg("Error closing progress store")
		}
	}, nil
}
