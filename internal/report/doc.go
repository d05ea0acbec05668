// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

// Package report runs the full analysis over an imported dataset and writes
// its results.
//
// A Runner executes, in order: the overview, every grouped report from
// database.Dimensions, the repeat fraud card and high-risk merchant reports,
// and both anomaly pair variants. The pair detector is either the in-process
// scan (detection.Detector) or the DuckDB self-join reference engine,
// selected by detection.engine.
//
// # Outputs
//
// When reports.console is set, each result is printed as an aligned table.
// When reports.output_dir is set, the directory receives:
//
//   - <report>.csv for every aggregate report (written by DuckDB COPY)
//   - rapid_succession_pairs.csv/.json and geographic_pairs.csv/.json
//   - summary.json with the run id, import statistics, overview and detector
//     parameters
package report
