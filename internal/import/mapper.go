// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package csvimport

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/fraudscope/internal/models"
	"github.com/tomtom215/fraudscope/internal/validation"
)

// Mapper converts CSV records to Transactions.
type Mapper struct {
	reader *Reader
}

// NewMapper creates a field mapper for rows read by r.
func NewMapper(r *Reader) *Mapper {
	return &Mapper{reader: r}
}

// ToTransaction parses, validates and derives one transaction.
// Any failure is a *RowError wrapping ErrMalformedRow.
func (m *Mapper) ToTransaction(rec Record) (*models.Transaction, error) {
	t, err := m.parse(rec)
	if err != nil {
		return nil, &RowError{Line: rec.Line, Err: err}
	}

	if verr := validation.ValidateStruct(t); verr != nil {
		return nil, &RowError{Line: rec.Line, Err: verr}
	}

	t.Derive()
	return t, nil
}

// parse maps required fields strictly and optional fields leniently:
// an unparseable optional value becomes nil rather than failing the row.
func (m *Mapper) parse(rec Record) (*models.Transaction, error) {
	v := func(col string) string { return m.reader.Value(rec, col) }

	ts, err := time.ParseInLocation(models.TimestampLayout, v(ColTimestamp), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid timestamp %q", ColTimestamp, v(ColTimestamp))
	}

	amount, err := decimal.NewFromString(v(ColAmount))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid amount %q", ColAmount, v(ColAmount))
	}
	// Bucket on the value DECIMAL(18,2) will store
	amount = amount.Round(2)

	isFraud, err := parseFraudLabel(v(ColIsFraud))
	if err != nil {
		return nil, err
	}

	t := &models.Transaction{
		ID:        v(ColTransNum),
		AccountID: v(ColCCNum),
		Timestamp: ts,
		Merchant:  v(ColMerchant),
		Category:  v(ColCategory),
		Amount:    amount,
		IsFraud:   isFraud,
		FirstName: v(ColFirst),
		LastName:  v(ColLast),
		Gender:    v(ColGender),
		Street:    v(ColStreet),
		City:      v(ColCity),
		State:     v(ColState),
		Zip:       v(ColZip),
		Job:       v(ColJob),
	}

	if unix, err := strconv.ParseInt(v(ColUnixTime), 10, 64); err == nil {
		t.UnixTime = unix
	}
	t.CityPop = parseOptionalInt(v(ColCityPop))
	if dob, err := time.ParseInLocation(models.DateOfBirthLayout, v(ColDOB), time.UTC); err == nil {
		t.DateOfBirth = &dob
	}
	t.Cardholder = parsePoint(v(ColLat), v(ColLong))
	t.MerchantLoc = parsePoint(v(ColMerchLat), v(ColMerchLong))

	return t, nil
}

func parseFraudLabel(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("%s: must be 0 or 1, got %q", ColIsFraud, s)
	}
}

// parseOptionalInt accepts integers and integral floats such as "1234.0".
func parseOptionalInt(s string) *int64 {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		n := int64(f)
		return &n
	}
	return nil
}

// parsePoint returns nil unless both coordinates parse. Range checks are
// left to the detector, which treats bad coordinates as unknown.
func parsePoint(lat, long string) *models.GeoPoint {
	if lat == "" || long == "" {
		return nil
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil
	}
	lo, err := strconv.ParseFloat(long, 64)
	if err != nil {
		return nil
	}
	return &models.GeoPoint{Lat: la, Long: lo}
}
