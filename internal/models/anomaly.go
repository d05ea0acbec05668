// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package models

import "time"

// AnomalyVariant identifies which pair heuristic produced an AnomalyPair.
type AnomalyVariant string

const (
	// VariantRapidSuccession pairs transactions close in time where at least
	// one of the two is labelled as fraud.
	VariantRapidSuccession AnomalyVariant = "rapid_succession"

	// VariantGeographic pairs transactions close in time whose cardholder
	// locations are further apart than the distance threshold.
	VariantGeographic AnomalyVariant = "geographic"
)

// AnomalyPair is an ordered pair of transactions on the same account where
// Txn2Time is strictly after Txn1Time and inside the detection window.
// MinutesApart and DistanceMiles are rounded to 2 decimals; a reported
// DistanceMiles is always above the threshold it was detected with.
type AnomalyPair struct {
	Variant       AnomalyVariant `json:"variant"`
	AccountID     string         `json:"account_id"`
	Txn1ID        string         `json:"txn1_id"`
	Txn2ID        string         `json:"txn2_id"`
	Txn1Time      time.Time      `json:"txn1_time"`
	Txn2Time      time.Time      `json:"txn2_time"`
	MinutesApart  float64        `json:"minutes_apart"`
	DistanceMiles *float64       `json:"distance_miles,omitempty"`
	Txn1Fraud     bool           `json:"txn1_is_fraud"`
	Txn2Fraud     bool           `json:"txn2_is_fraud"`
}
