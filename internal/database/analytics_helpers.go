// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/fraudscope/internal/metrics"
)

// analytics_helpers.go - Shared helper functions for analytics queries

// fraudRateExpr is the fraud rate percentage of the current group, rounded
// to two decimals. COUNT(*) is never zero inside a group.
const fraudRateExpr = `ROUND(CAST(COUNT(*) FILTER (WHERE is_fraud) AS DOUBLE) * 100 / COUNT(*), 2)`

// amountExpr reads the DECIMAL amount as DOUBLE so aggregates scan into float64.
const amountExpr = `CAST(amt AS DOUBLE)`

// observeQuery records the duration and outcome of a transactions query.
func observeQuery(operation string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, "transactions", time.Since(start), err)
}

// queryRowWithContext executes a query expecting a single row and scans into dest
func (db *DB) queryRowWithContext(ctx context.Context, query string, args []interface{}, dest ...interface{}) error {
	row := db.conn.QueryRowContext(ctx, query, args...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Return zero values for aggregations when no data
			return nil
		}
		return fmt.Errorf("scan row: %w", err)
	}
	return nil
}

// queryAndScan executes a query and scans all rows using the provided scanner function
func (db *DB) queryAndScan(ctx context.Context, query string, args []interface{}, scanner func(*sql.Rows) error) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scanner(rows); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration: %w", err)
	}

	return nil
}

// timedReport runs fn and records it under the given report name, both as a
// report duration and as a DuckDB query.
func timedReport(report string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordDBQuery(report, "transactions", elapsed, err)
	if err == nil {
		metrics.RecordReport(report, elapsed)
	}
	return err
}

// limitClause returns a LIMIT clause, or nothing when limit is not positive.
func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf("\nLIMIT %d", limit)
}

// nullFloatPtr converts a nullable column into an optional value
func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
