// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

// Package database provides storage and analytics for the transaction dataset.
//
// # Overview
//
// This package is the data layer between the importer, the reports and
// DuckDB. It owns the transactions table and every SQL statement run against it.
//
// # Architecture
//
// Core Database Operations:
//   - database.go: Lifecycle (open, initialize, close with checkpoint)
//   - database_connection.go: Open retry with exponential backoff and pool configuration
//   - database_schema.go: Table and index creation
//   - database_utils.go: Context timeouts, checkpoint, count and truncate
//   - crud_transactions.go: Batch insert with duplicate detection and full-table load
//   - crud_export.go: CSV export of reports through DuckDB COPY
//
// Analytics Operations:
//   - analytics_overview.go: Whole-table totals
//   - analytics_groups.go: Fraud rate by a whitelisted dimension
//   - analytics_patterns.go: Repeat fraud cards and high-risk merchants
//   - analytics_pairs.go: Rapid-succession and geographic pair self-joins
//   - analytics_helpers.go: Shared query and scan helpers
//
// # Database Technology
//
// DuckDB is used through the CGO driver github.com/duckdb/duckdb-go/v2.
// Extension auto-install and auto-load are disabled in the DSN.
//
// # Usage Examples
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	inserted, duplicates, err := db.InsertTransactionsBatch(ctx, batch)
//
//	report, err := db.GroupReport(ctx, database.DimensionCategory, 0)
//	for _, row := range report.Rows {
//	    fmt.Printf("%s %.2f%%\n", row.Group, row.FraudRatePct)
//	}
//
// # Thread Safety
//
// DB is safe for concurrent use. database/sql pools connections and DuckDB
// serialises conflicting writes.
//
// # Error Handling
//
// Errors are wrapped with the failing operation. Unknown report dimensions
// return ErrInvalidDimension. Contexts without a deadline get a default
// timeout; whole-table operations get a longer one.
package database
