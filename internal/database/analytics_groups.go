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

// Dimension is a whitelisted grouping column for GroupReport.
type Dimension string

const (
	DimensionCategory     Dimension = "category"
	DimensionHour         Dimension = "hour"
	DimensionDayOfWeek    Dimension = "day_of_week"
	DimensionAmountBucket Dimension = "amount_bucket"
	DimensionState        Dimension = "state"
	DimensionGender       Dimension = "gender"
	DimensionAgeGroup     Dimension = "age_group"
	DimensionCitySize     Dimension = "city_size"
	DimensionMonth        Dimension = "month"
)

// dimensionSpec holds the SQL fragments for one dimension. Nothing here comes
// from user input; Dimension values outside the map are rejected.
type dimensionSpec struct {
	keyExpr string // grouping expression
	column  string // output column name
	orderBy string // ORDER BY clause, may reference keyExpr and output aliases
	report  string // export file name without extension
}

// unknownLabel maps NULL or empty text to the unknown bucket so every row
// lands in some group.
func unknownLabel(column string) string {
	return fmt.Sprintf("COALESCE(NULLIF(TRIM(%s), ''), '%s')", column, models.UnknownBucket)
}

var dimensionSpecs = map[Dimension]dimensionSpec{
	DimensionCategory: {
		keyExpr: unknownLabel("category"),
		column:  "category",
		orderBy: "fraud_rate_pct DESC, " + unknownLabel("category"),
		report:  "fraud_by_category",
	},
	DimensionHour: {
		keyExpr: "txn_hour",
		column:  "txn_hour",
		orderBy: "txn_hour",
		report:  "fraud_by_hour",
	},
	DimensionDayOfWeek: {
		keyExpr: "txn_day_of_week",
		column:  "txn_day_of_week",
		orderBy: "txn_day_of_week",
		report:  "fraud_by_day_of_week",
	},
	DimensionAmountBucket: {
		keyExpr: "amount_bucket",
		column:  "amount_bucket",
		orderBy: "fraud_rate_pct DESC, amount_bucket",
		report:  "fraud_by_amount",
	},
	DimensionState: {
		keyExpr: unknownLabel("state"),
		column:  "state",
		orderBy: "fraud_txns DESC, " + unknownLabel("state"),
		report:  "fraud_by_state",
	},
	DimensionGender: {
		keyExpr: unknownLabel("gender"),
		column:  "gender",
		orderBy: unknownLabel("gender"),
		report:  "fraud_by_gender",
	},
	DimensionAgeGroup: {
		keyExpr: "age_group",
		column:  "age_group",
		orderBy: "fraud_rate_pct DESC, age_group",
		report:  "fraud_by_age_group",
	},
	DimensionCitySize: {
		keyExpr: "city_size",
		column:  "city_size",
		orderBy: "fraud_rate_pct DESC, city_size",
		report:  "fraud_by_city_size",
	},
	DimensionMonth: {
		keyExpr: "txn_month",
		column:  "txn_month",
		orderBy: "txn_month",
		report:  "fraud_monthly_trend",
	},
}

// Dimensions returns every supported dimension in report order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionCategory,
		DimensionHour,
		DimensionDayOfWeek,
		DimensionAmountBucket,
		DimensionState,
		DimensionGender,
		DimensionAgeGroup,
		DimensionCitySize,
		DimensionMonth,
	}
}

// ParseDimension validates a dimension name.
func ParseDimension(name string) (Dimension, error) {
	d := Dimension(name)
	if _, ok := dimensionSpecs[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDimension, name)
	}
	return d, nil
}

// ReportName returns the export file name used for a dimension.
func (d Dimension) ReportName() string {
	return dimensionSpecs[d].report
}

// buildGroupSQL builds the grouped report query. When asText is set the
// group label is cast to VARCHAR so numeric keys scan into a string. The
// cast label gets its own alias; reusing the column name would make ORDER BY
// sort hours as text.
func buildGroupSQL(d Dimension, limit int, asText bool) (string, error) {
	if _, err := ParseDimension(string(d)); err != nil {
		return "", err
	}
	spec := dimensionSpecs[d]

	label, alias := spec.keyExpr, spec.column
	if asText {
		label, alias = fmt.Sprintf("CAST(%s AS VARCHAR)", spec.keyExpr), "group_label"
	}

	return fmt.Sprintf(`
SELECT
	%s AS %s,
	COUNT(*) AS total_txns,
	COUNT(*) FILTER (WHERE is_fraud) AS fraud_txns,
	%s AS fraud_rate_pct,
	ROUND(AVG(%s) FILTER (WHERE is_fraud), 2) AS avg_fraud_amt,
	ROUND(MEDIAN(%s) FILTER (WHERE is_fraud), 2) AS median_fraud_amt,
	ROUND(AVG(%s) FILTER (WHERE NOT is_fraud), 2) AS avg_legit_amt,
	ROUND(MEDIAN(%s) FILTER (WHERE NOT is_fraud), 2) AS median_legit_amt
FROM transactions
GROUP BY %s
ORDER BY %s%s`,
		label, alias,
		fraudRateExpr,
		amountExpr, amountExpr, amountExpr, amountExpr,
		spec.keyExpr,
		spec.orderBy, limitClause(limit)), nil
}

// GroupReport returns fraud statistics grouped by one dimension. A positive
// limit keeps only the first rows in report order.
func (db *DB) GroupReport(ctx context.Context, d Dimension, limit int) (*models.GroupReport, error) {
	query, err := buildGroupSQL(d, limit, true)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	report := &models.GroupReport{Dimension: string(d), Rows: []models.GroupStat{}}
	err = timedReport(d.ReportName(), func() error {
		return db.queryAndScan(ctx, query, nil, func(rows *sql.Rows) error {
			var (
				s                                         models.GroupStat
				avgFraud, medianFraud, avgLegit, medLegit sql.NullFloat64
			)
			if err := rows.Scan(&s.Group, &s.TotalTxns, &s.FraudTxns, &s.FraudRatePct,
				&avgFraud, &medianFraud, &avgLegit, &medLegit); err != nil {
				return err
			}
			s.AvgFraudAmount = nullFloatPtr(avgFraud)
			s.MedianFraudAmount = nullFloatPtr(medianFraud)
			s.AvgLegitAmount = nullFloatPtr(avgLegit)
			s.MedianLegitAmount = nullFloatPtr(medLegit)
			report.Rows = append(report.Rows, s)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s report: %w", d, err)
	}
	return report, nil
}
