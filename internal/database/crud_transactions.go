// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/fraudscope/internal/logging"
	"github.com/tomtom215/fraudscope/internal/models"
)

const insertTransactionSQL = `INSERT INTO transactions (
		trans_num, cc_num, trans_time, unix_time, merchant, category,
		amt, is_fraud,
		first, last, gender, street, city, state, zip, job, city_pop, dob,
		lat, "long", merch_lat, merch_long,
		txn_hour, txn_day_of_week, txn_month, age, age_group, amount_bucket, city_size
	) VALUES (
		?, ?, ?, ?, ?, ?,
		CAST(? AS DECIMAL(18,2)), ?,
		?, ?, ?, ?, ?, ?, ?, ?, ?, CAST(? AS DATE),
		?, ?, ?, ?,
		?, ?, ?, ?, ?, ?, ?
	) ON CONFLICT DO NOTHING`

// InsertTransactionsBatch inserts transactions in a single database transaction.
// Rows whose trans_num already exists are left untouched and counted as duplicates.
func (db *DB) InsertTransactionsBatch(ctx context.Context, txns []*models.Transaction) (inserted, duplicates int, err error) {
	if len(txns) == 0 {
		return 0, 0, nil
	}

	ctx, cancel := db.ensureBulkContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { observeQuery("insert_batch", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertTransactionSQL)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i, t := range txns {
		if t == nil {
			continue
		}

		result, execErr := stmt.ExecContext(ctx, insertArgs(t)...)
		if execErr != nil {
			err = fmt.Errorf("failed to insert transaction %d (trans_num=%s): %w", i, t.ID, execErr)
			return 0, 0, err
		}

		rowsAffected, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			err = fmt.Errorf("failed to get rows affected for transaction %d: %w", i, rowsErr)
			return 0, 0, err
		}

		if rowsAffected > 0 {
			inserted++
		} else {
			duplicates++
			logging.Debug().Str("trans_num", t.ID).Msg("Duplicate transaction skipped")
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, duplicates, nil
}

// insertArgs flattens a transaction into insertTransactionSQL parameters.
// Optional values are passed as untyped nil so the driver binds NULL.
func insertArgs(t *models.Transaction) []interface{} {
	var cityPop, dob, age interface{}
	if t.CityPop != nil {
		cityPop = *t.CityPop
	}
	if t.DateOfBirth != nil {
		dob = t.DateOfBirth.Format(models.DateOfBirthLayout)
	}
	if t.Age != nil {
		age = *t.Age
	}

	var lat, long, merchLat, merchLong interface{}
	if t.Cardholder != nil {
		lat, long = t.Cardholder.Lat, t.Cardholder.Long
	}
	if t.MerchantLoc != nil {
		merchLat, merchLong = t.MerchantLoc.Lat, t.MerchantLoc.Long
	}

	var unixTime interface{}
	if t.UnixTime != 0 {
		unixTime = t.UnixTime
	}

	return []interface{}{
		t.ID, t.AccountID, t.Timestamp.UTC(), unixTime, t.Merchant, t.Category,
		t.Amount.String(), t.IsFraud,
		t.FirstName, t.LastName, t.Gender, t.Street, t.City, t.State, t.Zip, t.Job, cityPop, dob,
		lat, long, merchLat, merchLong,
		t.TxnHour, t.TxnDayOfWeek, t.TxnMonth, age, t.AgeGroup, t.AmountBucket, t.CitySize,
	}
}

const selectTransactionsSQL = `SELECT
		trans_num, cc_num, trans_time, unix_time, merchant, category,
		CAST(amt AS VARCHAR), is_fraud,
		first, last, gender, street, city, state, zip, job, city_pop, dob,
		lat, "long", merch_lat, merch_long,
		txn_hour, txn_day_of_week, txn_month, age, age_group, amount_bucket, city_size
	FROM transactions
	ORDER BY cc_num, trans_time, trans_num`

// LoadTransactions reads the whole table ordered by account, time and id.
func (db *DB) LoadTransactions(ctx context.Context) ([]models.Transaction, error) {
	ctx, cancel := db.ensureBulkContext(ctx)
	defer cancel()

	count, err := db.CountTransactions(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	txns := make([]models.Transaction, 0, count)
	err = db.queryAndScan(ctx, selectTransactionsSQL, nil, func(rows *sql.Rows) error {
		t, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return scanErr
		}
		txns = append(txns, t)
		return nil
	})
	observeQuery("load", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	logging.Debug().
		Int("rows", len(txns)).
		Dur("duration", time.Since(start)).
		Msg("Transactions loaded")

	return txns, nil
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var (
		t                                 models.Transaction
		unixTime, cityPop, age            sql.NullInt64
		merchant, category                sql.NullString
		first, last, gender, street, city sql.NullString
		state, zip, job                   sql.NullString
		amount                            decimal.Decimal
		dob                               sql.NullTime
		lat, long, merchLat, merchLong    sql.NullFloat64
	)

	err := rows.Scan(
		&t.ID, &t.AccountID, &t.Timestamp, &unixTime, &merchant, &category,
		&amount, &t.IsFraud,
		&first, &last, &gender, &street, &city, &state, &zip, &job, &cityPop, &dob,
		&lat, &long, &merchLat, &merchLong,
		&t.TxnHour, &t.TxnDayOfWeek, &t.TxnMonth, &age, &t.AgeGroup, &t.AmountBucket, &t.CitySize,
	)
	if err != nil {
		return t, err
	}

	t.Timestamp = t.Timestamp.UTC()
	t.UnixTime = unixTime.Int64
	t.Merchant = merchant.String
	t.Category = category.String
	t.Amount = amount
	t.FirstName = first.String
	t.LastName = last.String
	t.Gender = gender.String
	t.Street = street.String
	t.City = city.String
	t.State = state.String
	t.Zip = zip.String
	t.Job = job.String

	if cityPop.Valid {
		p := cityPop.Int64
		t.CityPop = &p
	}
	if dob.Valid {
		d := dob.Time.UTC()
		t.DateOfBirth = &d
	}
	if age.Valid {
		a := int(age.Int64)
		t.Age = &a
	}
	if lat.Valid && long.Valid {
		t.Cardholder = &models.GeoPoint{Lat: lat.Float64, Long: long.Float64}
	}
	if merchLat.Valid && merchLong.Valid {
		t.MerchantLoc = &models.GeoPoint{Lat: merchLat.Float64, Long: merchLong.Float64}
	}

	return t, nil
}
