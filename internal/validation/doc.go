// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

// Package validation provides struct validation using go-playground/validator v10.
//
// The importer validates every parsed CSV row before it is batched:
//
//	txn, err := mapper.Map(record)
//	...
//	if verr := validation.ValidateStruct(txn); verr != nil {
//	    // row is skipped and counted
//	}
//
// Field names in error messages are taken from the json tag, which for
// models.Transaction is the CSV column name, so a message reads
// "amt must be a non-negative amount" rather than naming the Go field.
//
// # Custom Validators
//
//   - nonnegative_decimal: shopspring decimal.Decimal that is >= 0
//
// decimal.Decimal is registered as a custom type so tags apply to its value
// rather than to its unexported struct fields.
//
// # Thread Safety
//
// GetValidator returns a singleton that caches struct metadata and is safe
// for concurrent use.
package validation
