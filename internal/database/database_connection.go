// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

/*
database_connection.go - Connection Opening and Pool Configuration

A file-backed DuckDB database takes an exclusive process lock. When a previous
run is still shutting down, the open fails with a lock conflict, so the open is
retried with exponential backoff until database.open_timeout elapses. Any other
error is permanent and returned on the first attempt.

Connection Pool Configuration:
  - MaxOpenConns: Based on CPU count for parallelism
  - MaxIdleConns: 2 for efficient connection reuse
  - ConnMaxLifetime: 1 hour to prevent stale connections
  - ConnMaxIdleTime: 5 minutes for idle connection cleanup
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tomtom215/fraudscope/internal/logging"
)

// pingTimeout bounds each individual open attempt.
const pingTimeout = 5 * time.Second

// openWithRetry opens and pings a DuckDB connection, retrying lock conflicts
// until timeout. A timeout of zero disables retries.
func openWithRetry(connStr string, timeout time.Duration) (*sql.DB, error) {
	var conn *sql.DB

	operation := func() error {
		c, err := sql.Open("duckdb", connStr)
		if err != nil {
			return classifyOpenError(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := c.PingContext(ctx); err != nil {
			closeQuietly(c)
			return classifyOpenError(err)
		}

		conn = c
		return nil
	}

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if timeout > 0 {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 250 * time.Millisecond
		b.MaxInterval = 5 * time.Second
		b.MaxElapsedTime = timeout
		policy = b
	}

	notify := func(err error, wait time.Duration) {
		logging.Warn().Err(err).Dur("retry_in", wait).Msg("Database is locked, retrying open")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return conn, nil
}

// classifyOpenError marks everything except lock conflicts as permanent.
func classifyOpenError(err error) error {
	if isLockError(err) {
		return err
	}
	return backoff.Permanent(fmt.Errorf("open duckdb: %w", err))
}

// isLockError checks if an error is a DuckDB file lock conflict
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Could not set lock on file") ||
		strings.Contains(errStr, "Conflicting lock is held") ||
		strings.Contains(errStr, "database is locked")
}

// configureConnectionPool sets connection pool parameters
func (db *DB) configureConnectionPool() error {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
	return nil
}
