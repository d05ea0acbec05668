// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

/*
database_schema.go - Database Schema Management

Tables:
  - transactions: one row per dataset transaction, keyed by trans_num, with
    the raw CSV columns plus the columns derived at import (txn_hour,
    txn_day_of_week, txn_month, age, age_group, amount_bucket, city_size)

Amounts are stored as DECIMAL(18,2) so bucket boundaries stay exact. Queries
that aggregate amounts cast to DOUBLE before averaging.

Index Strategy:
  - (cc_num, trans_time): per-account ordering for the pair queries and LoadTransactions
  - category, state, is_fraud: grouped report filters
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

const createTransactionsTable = `
CREATE TABLE IF NOT EXISTS transactions (
	trans_num       VARCHAR PRIMARY KEY,
	cc_num          VARCHAR NOT NULL,
	trans_time      TIMESTAMP NOT NULL,
	unix_time       BIGINT,
	merchant        VARCHAR,
	category        VARCHAR,
	amt             DECIMAL(18,2) NOT NULL,
	is_fraud        BOOLEAN NOT NULL,
	first           VARCHAR,
	last            VARCHAR,
	gender          VARCHAR,
	street          VARCHAR,
	city            VARCHAR,
	state           VARCHAR,
	zip             VARCHAR,
	job             VARCHAR,
	city_pop        BIGINT,
	dob             DATE,
	lat             DOUBLE,
	"long"          DOUBLE,
	merch_lat       DOUBLE,
	merch_long      DOUBLE,
	txn_hour        INTEGER NOT NULL,
	txn_day_of_week INTEGER NOT NULL,
	txn_month       VARCHAR NOT NULL,
	age             INTEGER,
	age_group       VARCHAR NOT NULL,
	amount_bucket   VARCHAR NOT NULL,
	city_size       VARCHAR NOT NULL
);`

// createTables creates the core database tables
func (db *DB) createTables(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, createTransactionsTable); err != nil {
		return fmt.Errorf("failed to create transactions table: %w", err)
	}
	return nil
}

func getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_txn_account_time ON transactions(cc_num, trans_time);`,
		`CREATE INDEX IF NOT EXISTS idx_txn_category ON transactions(category);`,
		`CREATE INDEX IF NOT EXISTS idx_txn_state ON transactions(state);`,
		`CREATE INDEX IF NOT EXISTS idx_txn_is_fraud ON transactions(is_fraud);`,
	}
}

// createIndexes creates the secondary indexes used by reports and pair queries
func (db *DB) createIndexes(ctx context.Context) error {
	for _, query := range getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
