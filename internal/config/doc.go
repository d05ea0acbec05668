// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

// Package config loads Fraudscope configuration using Koanf v2.
//
// Configuration is layered, later sources overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/fraudscope/config.yaml
//  3. Environment variables, including those from a .env file in the
//     working directory (loaded with godotenv; real environment wins)
//
// Only the environment variables listed in envTransformFunc are read, so
// unrelated variables never leak into the configuration.
//
// # Example config.yaml
//
//	dataset:
//	  path: data/fraudTest.csv
//	database:
//	  path: data/fraud.duckdb
//	  max_memory: 2GB
//	import:
//	  batch_size: 5000
//	  progress_path: data/import_progress
//	detection:
//	  rapid_window: 10m
//	  geo_window: 1h
//	  distance_miles: 500
//	  limit: 20
//	reports:
//	  output_dir: outputs
//
// # Environment Variables
//
//	DATASET_PATH, DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS,
//	DUCKDB_OPEN_TIMEOUT, IMPORT_BATCH_SIZE, IMPORT_PROGRESS_PATH, IMPORT_FRESH,
//	DETECTION_ENGINE, RAPID_WINDOW, GEO_WINDOW, GEO_DISTANCE_MILES,
//	DETECTION_LIMIT, DETECTION_WORKERS, DETECTION_OVERRIDES, REPORTS_OUTPUT_DIR,
//	METRICS_TEXTFILE_PATH, LOG_LEVEL, LOG_FORMAT, LOG_CALLER
//
// DETECTION_OVERRIDES takes a JSON object with the detector's own field
// names and is applied last:
//
//	DETECTION_OVERRIDES='{"distance_miles": 750, "workers": 4}'
//
// See envTransformFunc for the complete list.
package config
