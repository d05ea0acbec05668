// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package detection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fraudscope/internal/logging"
	"github.com/tomtom215/fraudscope/internal/metrics"
	"github.com/tomtom215/fraudscope/internal/models"
)

// Detector finds anomaly pairs over a transaction snapshot.
// It is safe for concurrent use; Configure swaps the configuration atomically.
type Detector struct {
	config Config
	mu     sync.RWMutex
}

// NewDetector creates a detector with the given configuration.
func NewDetector(config Config) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detector config: %w", err)
	}
	return &Detector{config: config}, nil
}

// RapidSuccession returns pairs on the same account where the second
// transaction follows the first within the rapid window and at least one of
// the two is labelled as fraud. Pairs are ordered by minutes apart, ascending.
func (d *Detector) RapidSuccession(ctx context.Context, txns []models.Transaction) ([]models.AnomalyPair, error) {
	cfg := d.Config()

	return d.run(ctx, models.VariantRapidSuccession, txns, scanParams{
		window: cfg.RapidWindow(),
		limit:  cfg.Limit,
		keep:   func(*models.Transaction) bool { return true },
		match: func(t1, t2 *models.Transaction) (models.AnomalyPair, bool) {
			if !t1.IsFraud && !t2.IsFraud {
				return models.AnomalyPair{}, false
			}
			return newPair(models.VariantRapidSuccession, t1, t2, nil), true
		},
		better: rapidBetter,
	}, cfg.Workers)
}

// Geographic returns pairs on the same account where the second transaction
// follows the first within the geo window and the cardholder locations are
// more than DistanceMiles apart. Transactions with an unknown location are
// excluded. Pairs are ordered by distance, descending.
//
// Both the exact distance and the reported, rounded distance must exceed
// DistanceMiles.
func (d *Detector) Geographic(ctx context.Context, txns []models.Transaction) ([]models.AnomalyPair, error) {
	cfg := d.Config()
	threshold := cfg.DistanceMiles

	return d.run(ctx, models.VariantGeographic, txns, scanParams{
		window: cfg.GeoWindow(),
		limit:  cfg.Limit,
		keep: func(t *models.Transaction) bool {
			return HasValidCoordinates(t.Cardholder)
		},
		match: func(t1, t2 *models.Transaction) (models.AnomalyPair, bool) {
			distance := DistanceMiles(*t1.Cardholder, *t2.Cardholder)
			rounded := roundTo2Decimals(distance)
			if distance <= threshold || rounded <= threshold {
				return models.AnomalyPair{}, false
			}
			return newPair(models.VariantGeographic, t1, t2, &rounded), true
		},
		better: geoBetter,
	}, cfg.Workers)
}

func (d *Detector) run(ctx context.Context, variant models.AnomalyVariant, txns []models.Transaction, params scanParams, workers int) ([]models.AnomalyPair, error) {
	start := time.Now()

	partitions := partitionByAccount(txns, params.keep)
	pairs, err := scanPartitions(ctx, partitions, params, workers)
	if err != nil {
		return nil, fmt.Errorf("%s scan: %w", variant, err)
	}

	elapsed := time.Since(start)
	metrics.RecordDetectorRun(string(variant), len(pairs), elapsed)

	logging.Ctx(ctx).Debug().
		Str("variant", string(variant)).
		Int("transactions", len(txns)).
		Int("accounts", len(partitions)).
		Int("pairs", len(pairs)).
		Dur("duration", elapsed).
		Msg("Anomaly scan completed")

	return pairs, nil
}

// Configure updates the detector configuration from JSON.
func (d *Detector) Configure(config json.RawMessage) error {
	d.mu.RLock()
	newConfig := d.config
	d.mu.RUnlock()

	if err := json.Unmarshal(config, &newConfig); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := newConfig.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	d.config = newConfig
	d.mu.Unlock()

	return nil
}

// Config returns the current configuration.
func (d *Detector) Config() Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

func newPair(variant models.AnomalyVariant, t1, t2 *models.Transaction, distance *float64) models.AnomalyPair {
	return models.AnomalyPair{
		Variant:       variant,
		AccountID:     t1.AccountID,
		Txn1ID:        t1.ID,
		Txn2ID:        t2.ID,
		Txn1Time:      t1.Timestamp,
		Txn2Time:      t2.Timestamp,
		MinutesApart:  roundTo2Decimals(t2.Timestamp.Sub(t1.Timestamp).Minutes()),
		DistanceMiles: distance,
		Txn1Fraud:     t1.IsFraud,
		Txn2Fraud:     t2.IsFraud,
	}
}
