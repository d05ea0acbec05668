// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package models

import "github.com/shopspring/decimal"

// UnknownBucket labels rows that fall outside every bucket (missing input,
// age under 18). Reports keep it so group totals add up to the table total.
const UnknownBucket = "unknown"

// Amount bucket labels. Upper bounds are inclusive: [0,100], (100,500], (500,1000], (1000,inf).
const (
	AmountBucket0To100    = "0-100"
	AmountBucket100To500  = "100-500"
	AmountBucket500To1000 = "500-1000"
	AmountBucketOver1000  = "1000+"
)

// Age bucket labels. Lower bounds are inclusive: [18,25), [25,35), ... [65,inf).
const (
	AgeBucket18To24 = "18-24"
	AgeBucket25To34 = "25-34"
	AgeBucket35To44 = "35-44"
	AgeBucket45To54 = "45-54"
	AgeBucket55To64 = "55-64"
	AgeBucket65Plus = "65+"
)

// City size labels by population.
const (
	CitySizeRural = "Rural (<10K)"
	CitySizeSmall = "Small (10K-100K)"
	CitySizeMid   = "Mid (100K-500K)"
	CitySizeLarge = "Large (500K+)"
)

var (
	amount100  = decimal.NewFromInt(100)
	amount500  = decimal.NewFromInt(500)
	amount1000 = decimal.NewFromInt(1000)
)

// AmountBucket returns the bucket label for a transaction amount.
// Negative amounts never reach this point; they fail validation.
func AmountBucket(amt decimal.Decimal) string {
	switch {
	case amt.IsNegative():
		return UnknownBucket
	case amt.LessThanOrEqual(amount100):
		return AmountBucket0To100
	case amt.LessThanOrEqual(amount500):
		return AmountBucket100To500
	case amt.LessThanOrEqual(amount1000):
		return AmountBucket500To1000
	default:
		return AmountBucketOver1000
	}
}

// AgeBucket returns the bucket label for an age in whole years.
func AgeBucket(age *int) string {
	if age == nil {
		return UnknownBucket
	}
	switch a := *age; {
	case a < 18:
		return UnknownBucket
	case a < 25:
		return AgeBucket18To24
	case a < 35:
		return AgeBucket25To34
	case a < 45:
		return AgeBucket35To44
	case a < 55:
		return AgeBucket45To54
	case a < 65:
		return AgeBucket55To64
	default:
		return AgeBucket65Plus
	}
}

// CitySizeBucket returns the bucket label for a city population.
func CitySizeBucket(pop *int64) string {
	if pop == nil || *pop < 0 {
		return UnknownBucket
	}
	switch p := *pop; {
	case p < 10_000:
		return CitySizeRural
	case p < 100_000:
		return CitySizeSmall
	case p < 500_000:
		return CitySizeMid
	default:
		return CitySizeLarge
	}
}
