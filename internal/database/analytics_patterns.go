// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/fraudscope/internal/models"
)

const (
	// ReportRepeatFraudCards is the export name of the repeat fraud card report.
	ReportRepeatFraudCards = "repeat_fraud_cards"

	// ReportHighRiskMerchants is the export name of the high-risk merchant report.
	ReportHighRiskMerchants = "high_risk_merchants"
)

// buildRepeatFraudCardsSQL lists accounts with at least minFrauds fraud
// transactions, most fraud first.
func buildRepeatFraudCardsSQL(minFrauds, limit int) string {
	return fmt.Sprintf(`
SELECT
	cc_num,
	COUNT(*) AS fraud_count,
	ROUND(SUM(%s), 2) AS total_fraud_amount,
	MIN(trans_time) AS first_fraud,
	MAX(trans_time) AS last_fraud
FROM transactions
WHERE is_fraud
GROUP BY cc_num
HAVING COUNT(*) >= %d
ORDER BY fraud_count DESC, cc_num%s`, amountExpr, minFrauds, limitClause(limit))
}

// buildHighRiskMerchantsSQL lists merchant/category pairs with enough volume
// and fraud to be meaningful, highest fraud rate first.
func buildHighRiskMerchantsSQL(minTxns, minFrauds, limit int) string {
	return fmt.Sprintf(`
SELECT
	merchant,
	category,
	COUNT(*) AS total_txns,
	COUNT(*) FILTER (WHERE is_fraud) AS fraud_txns,
	%s AS fraud_rate_pct,
	COALESCE(ROUND(SUM(%s) FILTER (WHERE is_fraud), 2), 0.0) AS total_fraud_amount
FROM transactions
GROUP BY merchant, category
HAVING COUNT(*) >= %d AND COUNT(*) FILTER (WHERE is_fraud) >= %d
ORDER BY fraud_rate_pct DESC, merchant, category%s`,
		fraudRateExpr, amountExpr, minTxns, minFrauds, limitClause(limit))
}

// RepeatFraudCards returns accounts with at least minFrauds fraud transactions.
func (db *DB) RepeatFraudCards(ctx context.Context, minFrauds, limit int) ([]models.RepeatFraudCard, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cards := []models.RepeatFraudCard{}
	err := timedReport(ReportRepeatFraudCards, func() error {
		return db.queryAndScan(ctx, buildRepeatFraudCardsSQL(minFrauds, limit), nil, func(rows *sql.Rows) error {
			var c models.RepeatFraudCard
			if err := rows.Scan(&c.AccountID, &c.FraudCount, &c.TotalFraudAmount, &c.FirstFraud, &c.LastFraud); err != nil {
				return err
			}
			c.FirstFraud = c.FirstFraud.UTC()
			c.LastFraud = c.LastFraud.UTC()
			cards = append(cards, c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get repeat fraud cards: %w", err)
	}
	return cards, nil
}

// HighRiskMerchants returns merchant/category pairs with at least minTxns
// transactions and minFrauds fraud transactions.
func (db *DB) HighRiskMerchants(ctx context.Context, minTxns, minFrauds, limit int) ([]models.HighRiskMerchant, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	merchants := []models.HighRiskMerchant{}
	err := timedReport(ReportHighRiskMerchants, func() error {
		return db.queryAndScan(ctx, buildHighRiskMerchantsSQL(minTxns, minFrauds, limit), nil, func(rows *sql.Rows) error {
			var (
				m                  models.HighRiskMerchant
				merchant, category sql.NullString
			)
			if err := rows.Scan(&merchant, &category, &m.TotalTxns, &m.FraudTxns, &m.FraudRatePct, &m.TotalFraudAmount); err != nil {
				return err
			}
			m.Merchant = merchant.String
			m.Category = category.String
			merchants = append(merchants, m)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get high risk merchants: %w", err)
	}
	return merchants, nil
}
