// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

// Package detection finds suspicious pairs of transactions on the same account.
//
// Detection Architecture:
//
//	[]Transaction -> partition by account -> sort by (time, id)
//	              -> sliding window scan  -> bounded top-K -> []AnomalyPair
//
// Two rules share the scan:
//   - Rapid Succession: t2 within the window after t1 and at least one of the
//     pair is labelled as fraud. Ranked by minutes apart, ascending.
//   - Geographic Anomaly: t2 within the window after t1, both cardholder
//     locations known, and the great-circle distance exceeds the threshold.
//     Ranked by distance, descending.
//
// Each account's transactions are scanned with two monotonic pointers that
// bracket the window (t1, t1+W], so only pairs inside the window are visited.
// The cost is O(n log n + P) where P is the number of pairs in the window,
// instead of the O(n^2) self-join a database would otherwise plan.
//
// Ties in the ranking key are broken by account id, then txn1 id, then txn2 id,
// which makes the output identical for any worker count.
//
// Distances use the spherical law of cosines with an Earth radius of 3959 miles.
// The cosine term is clamped to [-1, 1] before acos.
package detection
