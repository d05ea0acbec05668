// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package models

import "time"

// Overview summarises the whole transactions table.
type Overview struct {
	TotalTxns        int64   `json:"total_txns"`
	FraudCount       int64   `json:"fraud_count"`
	FraudRatePct     float64 `json:"fraud_rate_pct"`
	AvgAmount        float64 `json:"avg_amount"`
	TotalFraudAmount float64 `json:"total_fraud_amount"`
}

// GroupStat is one row of a grouped fraud-rate report.
// Amount statistics are nil when the group has no rows with that label.
type GroupStat struct {
	Group             string   `json:"group"`
	TotalTxns         int64    `json:"total_txns"`
	FraudTxns         int64    `json:"fraud_txns"`
	FraudRatePct      float64  `json:"fraud_rate_pct"`
	AvgFraudAmount    *float64 `json:"avg_fraud_amt,omitempty"`
	MedianFraudAmount *float64 `json:"median_fraud_amt,omitempty"`
	AvgLegitAmount    *float64 `json:"avg_legit_amt,omitempty"`
	MedianLegitAmount *float64 `json:"median_legit_amt,omitempty"`
}

// GroupReport is the result of grouping the table by one dimension.
type GroupReport struct {
	Dimension string      `json:"dimension"`
	Rows      []GroupStat `json:"rows"`
}

// RepeatFraudCard is an account with several fraud-labelled transactions.
type RepeatFraudCard struct {
	AccountID        string    `json:"cc_num"`
	FraudCount       int64     `json:"fraud_count"`
	TotalFraudAmount float64   `json:"total_fraud_amount"`
	FirstFraud       time.Time `json:"first_fraud"`
	LastFraud        time.Time `json:"last_fraud"`
}

// HighRiskMerchant is a merchant/category pair with an elevated fraud rate.
type HighRiskMerchant struct {
	Merchant         string  `json:"merchant"`
	Category         string  `json:"category"`
	TotalTxns        int64   `json:"total_txns"`
	FraudTxns        int64   `json:"fraud_txns"`
	FraudRatePct     float64 `json:"fraud_rate_pct"`
	TotalFraudAmount float64 `json:"total_fraud_amount"`
}
