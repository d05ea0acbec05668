// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package database

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/fraudscope/internal/config"
	"github.com/tomtom215/fraudscope/internal/models"
)

// testDBSemaphore limits concurrent database creation to prevent resource exhaustion in CI.
// Setting to 1 fully serializes database use across tests.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes database creation for short periods to reduce contention.
var testDBMutex sync.Mutex

// setupTestDB creates a new in-memory test database with timeout protection.
//
// The semaphore is held for the entire test and released via t.Cleanup, so
// only one test has an active DuckDB connection at any time.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	return openTestDB(t, &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	})
}

func openTestDB(t *testing.T, cfg *config.DatabaseConfig) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Logf("close test database: %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s (DuckDB may be under resource pressure)")
		return nil
	}
}

var testBaseTime = time.Date(2020, 6, 21, 12, 0, 0, 0, time.UTC)

// txnOption customises a test transaction before derivation.
type txnOption func(*models.Transaction)

func withFraud() txnOption {
	return func(t *models.Transaction) { t.IsFraud = true }
}

func withLocation(lat, long float64) txnOption {
	return func(t *models.Transaction) { t.Cardholder = &models.GeoPoint{Lat: lat, Long: long} }
}

func withCategory(category string) txnOption {
	return func(t *models.Transaction) { t.Category = category }
}

func withState(state string) txnOption {
	return func(t *models.Transaction) { t.State = state }
}

func withMerchant(merchant string) txnOption {
	return func(t *models.Transaction) { t.Merchant = merchant }
}

func withDOB(dob time.Time) txnOption {
	return func(t *models.Transaction) { t.DateOfBirth = &dob }
}

func withCityPop(pop int64) txnOption {
	return func(t *models.Transaction) { t.CityPop = &pop }
}

// newTestTxn builds a derived transaction offset minutes after testBaseTime.
func newTestTxn(id, account string, minutes int, amount string, opts ...txnOption) *models.Transaction {
	t := &models.Transaction{
		ID:        id,
		AccountID: account,
		Timestamp: testBaseTime.Add(time.Duration(minutes) * time.Minute),
		Merchant:  "fraud_Test Merchant",
		Category:  "misc_net",
		Amount:    decimal.RequireFromString(amount),
		Gender:    "F",
		State:     "NY",
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Derive()
	return t
}

// insertTestTxns inserts txns and fails the test on error or duplicates.
func insertTestTxns(t *testing.T, db *DB, txns ...*models.Transaction) {
	t.Helper()
	inserted, duplicates, err := db.InsertTransactionsBatch(context.Background(), txns)
	checkNoError(t, err)
	checkIntEqual(t, "inserted", inserted, len(txns))
	checkIntEqual(t, "duplicates", duplicates, 0)
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNew_InMemory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	checkNoError(t, db.Ping(ctx))

	count, err := db.CountTransactions(ctx)
	checkNoError(t, err)
	if count != 0 {
		t.Errorf("expected empty table, got %d rows", count)
	}

	checkStringEqual(t, "Path", db.Path(), ":memory:")
}

func TestNew_FileDatabaseSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fraud.duckdb")
	cfg := &config.DatabaseConfig{Path: path, MaxMemory: "512MB", Threads: 1, OpenTimeout: time.Second}

	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	db, err := New(cfg)
	checkNoError(t, err)
	_, _, err = db.InsertTransactionsBatch(context.Background(), []*models.Transaction{
		newTestTxn("t1", "acct", 0, "10.00"),
	})
	checkNoError(t, err)
	checkNoError(t, db.Close())

	reopened, err := New(cfg)
	checkNoError(t, err)
	defer func() { _ = reopened.Close() }()

	count, err := reopened.CountTransactions(context.Background())
	checkNoError(t, err)
	if count != 1 {
		t.Errorf("expected 1 row after reopen, got %d", count)
	}
}

func countTxnIndexes(t *testing.T, db *DB) int {
	t.Helper()
	var indexes int
	err := db.conn.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM duckdb_indexes() WHERE table_name = 'transactions' AND index_name LIKE 'idx_txn_%'").Scan(&indexes)
	checkNoError(t, err)
	return indexes
}

func TestNew_CreatesIndexes(t *testing.T) {
	db := setupTestDB(t)
	checkIntEqual(t, "index count", countTxnIndexes(t, db), len(getIndexQueries()))
}

func TestNew_SkipIndexes(t *testing.T) {
	db := openTestDB(t, &config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB", SkipIndexes: true})
	checkIntEqual(t, "index count", countTxnIndexes(t, db), 0)
}

func TestBuildConnString(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want []string
	}{
		{
			name: "explicit values",
			cfg:  config.DatabaseConfig{Path: "data/x.duckdb", Threads: 4, MaxMemory: "1GB", PreserveInsertionOrder: true},
			want: []string{"data/x.duckdb?", "threads=4", "max_memory=1GB", "preserve_insertion_order=true", "autoinstall_known_extensions=false"},
		},
		{
			name: "defaults",
			cfg:  config.DatabaseConfig{Path: ":memory:"},
			want: []string{":memory:?", "max_memory=2GB", "preserve_insertion_order=false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildConnString(&tt.cfg)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("conn string %q missing %q", got, want)
				}
			}
		})
	}
}

func TestIsLockError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("IO Error: Could not set lock on file \"x.duckdb\": Conflicting lock is held"), true},
		{errors.New("Catalog Error: Table does not exist"), false},
	}
	for _, tt := range tests {
		if got := isLockError(tt.err); got != tt.want {
			t.Errorf("isLockError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestEnsureContext(t *testing.T) {
	db := &DB{}

	ctx, cancel := db.ensureContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected default deadline")
	}

	parent, parentCancel := context.WithTimeout(context.Background(), time.Hour)
	defer parentCancel()
	ctx2, cancel2 := db.ensureBulkContext(parent)
	defer cancel2()
	want, _ := parent.Deadline()
	if got, _ := ctx2.Deadline(); !got.Equal(want) {
		t.Errorf("existing deadline replaced: got %v, want %v", got, want)
	}
}

func TestQuoteLiteral(t *testing.T) {
	checkStringEqual(t, "plain", quoteLiteral("/tmp/out.csv"), "'/tmp/out.csv'")
	checkStringEqual(t, "quote", quoteLiteral("/tmp/o'brien.csv"), "'/tmp/o''brien.csv'")
}
