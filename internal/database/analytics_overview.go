// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/fraudscope/internal/models"
)

const overviewSQL = `
SELECT
	COUNT(*) AS total_txns,
	COUNT(*) FILTER (WHERE is_fraud) AS fraud_count,
	CASE WHEN COUNT(*) = 0 THEN 0.0
		ELSE ROUND(CAST(COUNT(*) FILTER (WHERE is_fraud) AS DOUBLE) * 100 / COUNT(*), 2)
	END AS fraud_rate_pct,
	COALESCE(ROUND(AVG(CAST(amt AS DOUBLE)), 2), 0.0) AS avg_amount,
	COALESCE(ROUND(SUM(CAST(amt AS DOUBLE)) FILTER (WHERE is_fraud), 2), 0.0) AS total_fraud_amount
FROM transactions`

// Overview returns whole-table totals. An empty table yields a zero overview.
func (db *DB) Overview(ctx context.Context) (*models.Overview, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var o models.Overview
	err := timedReport("overview", func() error {
		return db.queryRowWithContext(ctx, overviewSQL, nil,
			&o.TotalTxns, &o.FraudCount, &o.FraudRatePct, &o.AvgAmount, &o.TotalFraudAmount)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get overview: %w", err)
	}
	return &o, nil
}
