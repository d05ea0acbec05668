// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import row results.
const (
	RowImported  = "imported"
	RowSkipped   = "skipped"
	RowDuplicate = "duplicate"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Import Metrics
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fraudscope_import_rows_total",
			Help: "CSV rows handled by the importer, by result",
		},
		[]string{"result"},
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fraudscope_import_duration_seconds",
			Help:    "Duration of CSV imports in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// Report Metrics
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fraudscope_report_duration_seconds",
			Help:    "Duration of aggregate report queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"report"},
	)

	// Detector Metrics
	AnomalyPairs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fraudscope_anomaly_pairs",
			Help: "Anomaly pairs returned by the most recent detector run",
		},
		[]string{"variant"},
	)

	DetectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fraudscope_detector_duration_seconds",
			Help:    "Duration of anomaly pair scans in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"variant"},
	)

	LastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fraudscope_last_run_timestamp_seconds",
			Help: "Unix time of the last completed analysis run",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordImport records the row counts and duration of one import.
func RecordImport(imported, skipped, duplicates int64, duration time.Duration) {
	ImportRows.WithLabelValues(RowImported).Add(float64(imported))
	ImportRows.WithLabelValues(RowSkipped).Add(float64(skipped))
	ImportRows.WithLabelValues(RowDuplicate).Add(float64(duplicates))
	ImportDuration.Observe(duration.Seconds())
}

// RecordReport records the duration of one report query.
func RecordReport(report string, duration time.Duration) {
	ReportDuration.WithLabelValues(report).Observe(duration.Seconds())
}

// RecordDetectorRun records the result size and duration of one detector scan.
func RecordDetectorRun(variant string, pairs int, duration time.Duration) {
	AnomalyPairs.WithLabelValues(variant).Set(float64(pairs))
	DetectorDuration.WithLabelValues(variant).Observe(duration.Seconds())
}

// MarkRunComplete stamps the last run gauge.
func MarkRunComplete(at time.Time) {
	LastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes every metric in the default registry to path in the
// Prometheus text format. The file is replaced atomically, as the textfile
// collector expects.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(prometheus.DefaultGatherer, path)
}

// WriteTextfileFrom writes the metrics of g to path.
func WriteTextfileFrom(g prometheus.Gatherer, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
