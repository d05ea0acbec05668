// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

// Package metrics provides Prometheus instrumentation for Fraudscope runs.
//
// Fraudscope is a batch tool, so nothing is scraped. At the end of a run the
// default registry is written to a node_exporter textfile collector file
// (metrics.textfile_path) with WriteTextfile.
//
// # Metric Families
//
//   - fraudscope_import_rows_total{result}: imported, skipped, duplicate
//   - fraudscope_import_duration_seconds
//   - duckdb_query_duration_seconds{operation,table} and duckdb_query_errors_total
//   - fraudscope_report_duration_seconds{report}
//   - fraudscope_anomaly_pairs{variant}: pairs returned by the last run
//   - fraudscope_detector_duration_seconds{variant}
//   - fraudscope_last_run_timestamp_seconds
package metrics
