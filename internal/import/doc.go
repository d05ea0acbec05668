// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

// Package csvimport loads the transactions CSV dataset into the database.
//
// The importer reads the file with a header-keyed Reader, maps each row to a
// models.Transaction through a Mapper and inserts batches through a Store
// (normally *database.DB). Rows are never fatal: a row that fails to parse or
// validate is counted as skipped, and the first import.max_logged_skips of
// them are logged with their line number. Only I/O failures and database
// errors abort an import.
//
// # Resumable Imports
//
// Progress is saved after every committed batch through a ProgressTracker,
// keyed by the file's Fingerprint (absolute path, size and modification
// time). BadgerProgress persists it in BadgerDB so that an interrupted run
// resumes after the last committed line:
//
//	progress, err := csvimport.OpenBadgerProgress(cfg.Import.ProgressPath)
//	importer := csvimport.NewImporter(&cfg.Import, db, progress)
//	stats, err := importer.Import(ctx, cfg.Dataset.Path)
//
// A fingerprint that completed before is not read again. Rows re-read after
// a crash between commit and progress save are absorbed by the trans_num
// primary key and reported as duplicates.
//
// # Fresh Imports
//
// With import.fresh set, saved progress is cleared and the transactions
// table truncated before reading.
package csvimport
