// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

/*
analytics_pairs.go - Anomaly Pair Self-Joins

The detection package finds anomaly pairs with a per-account sliding window.
These queries find the same pairs with a DuckDB self-join and serve as the
"sql" detection engine and as a cross-check for the scan.

Both queries use the same pair predicate, rounding, unknown-location rule and
ordering as the scan:
  - same cc_num, t1 < t2 <= t1 + window, distinct trans_num
  - minutes_apart and distance_miles rounded to 2 decimals
  - distance filter applied to the unrounded distance
  - ties broken by cc_num, txn1 id, txn2 id
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/tomtom215/fraudscope/internal/models"
)

// pairPredicate joins t1 to later transactions on the same account inside
// the window. The single parameter is the window in minutes.
const pairPredicate = `t1.cc_num = t2.cc_num
		AND t2.trans_time > t1.trans_time
		AND t2.trans_time <= t1.trans_time + to_minutes(CAST(? AS BIGINT))
		AND t1.trans_num <> t2.trans_num`

const minutesApartExpr = `ROUND(CAST(epoch_us(t2.trans_time) - epoch_us(t1.trans_time) AS DOUBLE) / 60000000, 2)`

// knownLocationFilter mirrors detection.IsUnknownLocation.
const knownLocationFilter = `lat IS NOT NULL AND "long" IS NOT NULL
		AND NOT isnan(lat) AND NOT isnan("long")
		AND lat BETWEEN -90 AND 90 AND "long" BETWEEN -180 AND 180
		AND abs(lat) >= 1e-7 AND abs("long") >= 1e-7`

// distanceExpr is the spherical law of cosines with the argument clamped to [-1, 1].
const distanceExpr = `3959.0 * acos(greatest(-1.0, least(1.0,
			sin(radians(t1.lat)) * sin(radians(t2.lat))
			+ cos(radians(t1.lat)) * cos(radians(t2.lat)) * cos(radians(t2.lng) - radians(t1.lng)))))`

func buildRapidSuccessionSQL(limit int) string {
	return fmt.Sprintf(`
SELECT
	t1.cc_num,
	t1.trans_num AS txn1_id,
	t2.trans_num AS txn2_id,
	t1.trans_time AS txn1_time,
	t2.trans_time AS txn2_time,
	%s AS minutes_apart,
	CAST(NULL AS DOUBLE) AS distance_miles,
	t1.is_fraud AS txn1_is_fraud,
	t2.is_fraud AS txn2_is_fraud
FROM transactions t1
JOIN transactions t2
	ON %s
WHERE t1.is_fraud OR t2.is_fraud
ORDER BY minutes_apart, t1.cc_num, txn1_id, txn2_id%s`,
		minutesApartExpr, pairPredicate, limitClause(limit))
}

func buildGeoAnomalySQL(limit int) string {
	return fmt.Sprintf(`
WITH known AS (
	SELECT trans_num, cc_num, trans_time, is_fraud, lat, "long" AS lng
	FROM transactions
	WHERE %s
),
candidates AS (
	SELECT
		t1.cc_num,
		t1.trans_num AS txn1_id,
		t2.trans_num AS txn2_id,
		t1.trans_time AS txn1_time,
		t2.trans_time AS txn2_time,
		%s AS minutes_apart,
		%s AS raw_distance,
		t1.is_fraud AS txn1_is_fraud,
		t2.is_fraud AS txn2_is_fraud
	FROM known t1
	JOIN known t2
		ON %s
)
SELECT
	cc_num, txn1_id, txn2_id, txn1_time, txn2_time, minutes_apart,
	ROUND(raw_distance, 2) AS distance_miles,
	txn1_is_fraud, txn2_is_fraud
FROM candidates
WHERE raw_distance > ? AND ROUND(raw_distance, 2) > ?
ORDER BY distance_miles DESC, cc_num, txn1_id, txn2_id%s`,
		knownLocationFilter, minutesApartExpr, distanceExpr, pairPredicate, limitClause(limit))
}

// RapidSuccessionPairsSQL returns rapid-succession pairs computed by a self-join.
func (db *DB) RapidSuccessionPairsSQL(ctx context.Context, windowMinutes, limit int) ([]models.AnomalyPair, error) {
	if windowMinutes <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d minutes", windowMinutes)
	}

	return db.queryPairs(ctx, models.VariantRapidSuccession, buildRapidSuccessionSQL(limit), windowMinutes)
}

// GeoAnomalyPairsSQL returns geographic anomaly pairs computed by a self-join.
func (db *DB) GeoAnomalyPairsSQL(ctx context.Context, windowMinutes int, distanceMiles float64, limit int) ([]models.AnomalyPair, error) {
	if windowMinutes <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d minutes", windowMinutes)
	}
	if distanceMiles < 0 || math.IsNaN(distanceMiles) {
		return nil, fmt.Errorf("distance threshold must be non-negative, got %v", distanceMiles)
	}

	return db.queryPairs(ctx, models.VariantGeographic, buildGeoAnomalySQL(limit), windowMinutes, distanceMiles, distanceMiles)
}

func (db *DB) queryPairs(ctx context.Context, variant models.AnomalyVariant, query string, args ...interface{}) ([]models.AnomalyPair, error) {
	ctx, cancel := db.ensureBulkContext(ctx)
	defer cancel()

	pairs := []models.AnomalyPair{}
	err := timedReport(string(variant)+"_pairs", func() error {
		return db.queryAndScan(ctx, query, args, func(rows *sql.Rows) error {
			var (
				p        = models.AnomalyPair{Variant: variant}
				distance sql.NullFloat64
			)
			if err := rows.Scan(&p.AccountID, &p.Txn1ID, &p.Txn2ID, &p.Txn1Time, &p.Txn2Time,
				&p.MinutesApart, &distance, &p.Txn1Fraud, &p.Txn2Fraud); err != nil {
				return err
			}
			p.Txn1Time = p.Txn1Time.UTC()
			p.Txn2Time = p.Txn2Time.UTC()
			p.DistanceMiles = nullFloatPtr(distance)
			pairs = append(pairs, p)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s pairs: %w", variant, err)
	}
	return pairs, nil
}
