// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the layout of trans_date_trans_time in the dataset.
const TimestampLayout = "2006-01-02 15:04:05"

// DateOfBirthLayout is the layout of the dob column in the dataset.
const DateOfBirthLayout = "2006-01-02"

// GeoPoint is a location in decimal degrees.
type GeoPoint struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Transaction is a single credit-card transaction from the dataset.
//
// Required fields (ID, AccountID, Timestamp, Amount) are enforced by struct
// validation at import time. Locations are nil when the source row had no
// parseable coordinates; range checks happen in the detection package, which
// treats bad coordinates as an unknown location rather than a bad row.
type Transaction struct {
	ID        string          `json:"trans_num" validate:"required,max=64"`
	AccountID string          `json:"cc_num" validate:"required,max=32"`
	Timestamp time.Time       `json:"trans_date_trans_time" validate:"required"`
	UnixTime  int64           `json:"unix_time,omitempty"`
	Merchant  string          `json:"merchant"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amt" validate:"nonnegative_decimal,decimal_18_2"`
	IsFraud   bool            `json:"is_fraud"`

	FirstName   string     `json:"first,omitempty"`
	LastName    string     `json:"last,omitempty"`
	Gender      string     `json:"gender,omitempty" validate:"max=16"`
	Street      string     `json:"street,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty" validate:"max=32"`
	Zip         string     `json:"zip,omitempty"`
	Job         string     `json:"job,omitempty"`
	CityPop     *int64     `json:"city_pop,omitempty" validate:"omitempty,gte=0"`
	DateOfBirth *time.Time `json:"dob,omitempty"`

	Cardholder  *GeoPoint `json:"cardholder,omitempty"`
	MerchantLoc *GeoPoint `json:"merchant_location,omitempty"`

	// Derived at import
	TxnHour      int    `json:"txn_hour" validate:"gte=0,lte=23"`
	TxnDayOfWeek int    `json:"txn_day_of_week" validate:"gte=0,lte=6"`
	TxnMonth     string `json:"txn_month"`
	Age          *int   `json:"age,omitempty"`
	AgeGroup     string `json:"age_group"`
	AmountBucket string `json:"amount_bucket"`
	CitySize     string `json:"city_size"`
}

// Derive fills the derived columns from the raw fields. It is idempotent.
func (t *Transaction) Derive() {
	t.TxnHour = t.Timestamp.Hour()
	t.TxnDayOfWeek = MondayFirstWeekday(t.Timestamp)
	t.TxnMonth = t.Timestamp.Format("2006-01")

	t.Age = nil
	if t.DateOfBirth != nil {
		age := AgeInYears(*t.DateOfBirth, t.Timestamp)
		t.Age = &age
	}
	t.AgeGroup = AgeBucket(t.Age)
	t.AmountBucket = AmountBucket(t.Amount)
	t.CitySize = CitySizeBucket(t.CityPop)
}

// MondayFirstWeekday returns the day of week with Monday as 0 and Sunday as 6.
func MondayFirstWeekday(ts time.Time) int {
	return (int(ts.Weekday()) + 6) % 7
}

// AgeInYears returns the number of whole calendar years between dob and at.
func AgeInYears(dob, at time.Time) int {
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	return years
}
