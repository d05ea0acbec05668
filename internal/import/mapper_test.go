// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package csvimport

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/fraudscope/internal/models"
)

// mapOne reads a single data row through a Reader and Mapper.
func mapOne(t *testing.T, header, row string) (*models.Transaction, error) {
	t.Helper()
	r, err := NewReader(strings.NewReader(header + "\n" + row + "\n"))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	return NewMapper(r).ToTransaction(rec)
}

func TestMapper_ToTransaction_FullRow(t *testing.T) {
	txn, err := mapOne(t, datasetHeader, datasetRow(0, "abc123", "2703186189652095", 0, "107.23", true))
	if err != nil {
		t.Fatalf("ToTransaction() error = %v", err)
	}

	if txn.ID != "abc123" || txn.AccountID != "2703186189652095" {
		t.Errorf("ids = %s/%s", txn.ID, txn.AccountID)
	}
	wantTS := time.Date(2020, 6, 21, 12, 0, 0, 0, time.UTC)
	if !txn.Timestamp.Equal(wantTS) {
		t.Errorf("Timestamp = %v, want %v", txn.Timestamp, wantTS)
	}
	if txn.Amount.String() != "107.23" {
		t.Errorf("Amount = %s, want 107.23", txn.Amount)
	}
	if !txn.IsFraud {
		t.Error("IsFraud = false, want true")
	}
	if txn.UnixTime != 1371816865 {
		t.Errorf("UnixTime = %d", txn.UnixTime)
	}
	if txn.CityPop == nil || *txn.CityPop != 333497 {
		t.Errorf("CityPop = %v, want 333497", txn.CityPop)
	}
	if txn.Cardholder == nil || txn.Cardholder.Lat != 33.9659 || txn.Cardholder.Long != -80.9355 {
		t.Errorf("Cardholder = %+v", txn.Cardholder)
	}
	if txn.MerchantLoc == nil || txn.MerchantLoc.Lat != 33.986391 {
		t.Errorf("MerchantLoc = %+v", txn.MerchantLoc)
	}

	// Derived columns
	if txn.TxnHour != 12 {
		t.Errorf("TxnHour = %d, want 12", txn.TxnHour)
	}
	if txn.TxnMonth != "2020-06" {
		t.Errorf("TxnMonth = %s, want 2020-06", txn.TxnMonth)
	}
	if txn.Age == nil || *txn.Age != 52 {
		t.Errorf("Age = %v, want 52", txn.Age)
	}
	if txn.AmountBucket != models.AmountBucket(txn.Amount) {
		t.Errorf("AmountBucket = %s", txn.AmountBucket)
	}
}

func TestMapper_ToTransaction_Malformed(t *testing.T) {
	header := "trans_num,cc_num,trans_date_trans_time,amt,is_fraud"

	tests := []struct {
		name   string
		row    string
		errSub string
	}{
		{"bad timestamp", "t1,42,21/06/2020,1.00,0", "trans_date_trans_time"},
		{"bad amount", "t1,42,2020-06-21 12:00:00,abc,0", "amt"},
		{"negative amount", "t1,42,2020-06-21 12:00:00,-1.00,0", "amt"},
		{"amount out of range", "t1,42,2020-06-21 12:00:00,1e20,0", "amt"},
		{"amount above 16 integer digits", "t1,42,2020-06-21 12:00:00,12345678901234567.00,0", "amt"},
		{"bad label", "t1,42,2020-06-21 12:00:00,1.00,yes", "is_fraud"},
		{"missing trans_num", ",42,2020-06-21 12:00:00,1.00,0", "trans_num"},
		{"missing cc_num", "t1,,2020-06-21 12:00:00,1.00,0", "cc_num"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapOne(t, header, tt.row)
			if !errors.Is(err, ErrMalformedRow) {
				t.Fatalf("ToTransaction() error = %v, want ErrMalformedRow", err)
			}
			if !strings.Contains(err.Error(), "line 2") {
				t.Errorf("error %q does not carry the line number", err)
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q does not mention %q", err, tt.errSub)
			}
		})
	}
}

func TestMapper_ToTransaction_AmountRoundedToCents(t *testing.T) {
	header := "trans_num,cc_num,trans_date_trans_time,amt,is_fraud"

	tests := []struct {
		raw        string
		wantAmount string
		wantBucket string
	}{
		{"100.004", "100.00", models.AmountBucket0To100},
		{"100.005", "100.01", models.AmountBucket100To500},
		{"499.999", "500.00", models.AmountBucket100To500},
		{"9999999999999999.99", "9999999999999999.99", models.AmountBucketOver1000},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			txn, err := mapOne(t, header, "t1,42,2020-06-21 12:00:00,"+tt.raw+",0")
			if err != nil {
				t.Fatalf("ToTransaction() error = %v", err)
			}
			if got := txn.Amount.StringFixed(2); got != tt.wantAmount {
				t.Errorf("Amount = %s, want %s", got, tt.wantAmount)
			}
			if txn.AmountBucket != tt.wantBucket {
				t.Errorf("AmountBucket = %s, want %s", txn.AmountBucket, tt.wantBucket)
			}
		})
	}
}

func TestMapper_ToTransaction_LenientOptionals(t *testing.T) {
	header := "trans_num,cc_num,trans_date_trans_time,amt,is_fraud,city_pop,dob,lat,long,unix_time"

	tests := []struct {
		name        string
		row         string
		wantPop     *int64
		wantDOB     bool
		wantHolder  bool
		wantUnixSet bool
	}{
		{
			name: "all blank",
			row:  "t1,42,2020-06-21 12:00:00,1.00,0,,,,,",
		},
		{
			name:        "float city_pop and valid rest",
			row:         "t1,42,2020-06-21 12:00:00,1.00,0,1234.0,1990-01-01,40.7,-74.0,1592740800",
			wantPop:     int64Ptr(1234),
			wantDOB:     true,
			wantHolder:  true,
			wantUnixSet: true,
		},
		{
			name: "garbage optionals",
			row:  "t1,42,2020-06-21 12:00:00,1.00,0,12.5,soon,north,-74.0,x",
		},
		{
			name:       "one coordinate missing",
			row:        "t1,42,2020-06-21 12:00:00,1.00,0,,,40.7,,",
			wantHolder: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := mapOne(t, header, tt.row)
			if err != nil {
				t.Fatalf("ToTransaction() error = %v", err)
			}
			switch {
			case tt.wantPop == nil && txn.CityPop != nil:
				t.Errorf("CityPop = %d, want nil", *txn.CityPop)
			case tt.wantPop != nil && (txn.CityPop == nil || *txn.CityPop != *tt.wantPop):
				t.Errorf("CityPop = %v, want %d", txn.CityPop, *tt.wantPop)
			}
			if (txn.DateOfBirth != nil) != tt.wantDOB {
				t.Errorf("DateOfBirth = %v, want set=%v", txn.DateOfBirth, tt.wantDOB)
			}
			if (txn.Cardholder != nil) != tt.wantHolder {
				t.Errorf("Cardholder = %+v, want set=%v", txn.Cardholder, tt.wantHolder)
			}
			if (txn.UnixTime != 0) != tt.wantUnixSet {
				t.Errorf("UnixTime = %d, want set=%v", txn.UnixTime, tt.wantUnixSet)
			}
			if txn.DateOfBirth == nil && txn.AgeGroup != models.UnknownBucket {
				t.Errorf("AgeGroup = %s, want %s", txn.AgeGroup, models.UnknownBucket)
			}
		})
	}
}

func int64Ptr(n int64) *int64 {
	return &n
}
