// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

/*
Package models defines the data structures shared by the fraudscope packages.

Key Components:

  - Transaction: one row of the credit-card transaction dataset, including the
    derived columns (hour, weekday, month, age and bucket labels) computed at import
  - GeoPoint: a latitude/longitude pair in decimal degrees
  - AnomalyPair: a suspicious ordered pair of transactions on one account
  - Overview, GroupStat, RepeatFraudCard, HighRiskMerchant: aggregate report rows

Bucket Boundaries:

Amount, age and city-population buckets are defined in buckets.go. They are the
single source of truth for the labels stored in the transactions table, so the
SQL reports only ever group by the precomputed label columns.

Transactions are immutable once mapped. Nothing in this package performs I/O.
*/
package models
