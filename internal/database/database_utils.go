// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package database

import (
	"context"
	"fmt"
	"time"
)

const (
	// defaultQueryTimeout bounds point queries and small aggregations.
	defaultQueryTimeout = 30 * time.Second

	// bulkQueryTimeout bounds full-table reads, pair self-joins and exports.
	bulkQueryTimeout = 10 * time.Minute
)

// ensureContext returns a context with the default timeout if ctx has no
// deadline. The returned cancel function must always be called.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return ensureContextTimeout(ctx, defaultQueryTimeout)
}

// ensureBulkContext is ensureContext for whole-table operations.
func (db *DB) ensureBulkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return ensureContextTimeout(ctx, bulkQueryTimeout)
}

func ensureContextTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), timeout)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// CountTransactions returns the number of rows in the transactions table
func (db *DB) CountTransactions(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var count int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count)
	observeQuery("count", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// Truncate removes every row from the transactions table
func (db *DB) Truncate(ctx context.Context) error {
	ctx, cancel := db.ensureBulkContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, "DELETE FROM transactions")
	observeQuery("truncate", start, err)
	if err != nil {
		return fmt.Errorf("failed to truncate transactions: %w", err)
	}
	return nil
}
