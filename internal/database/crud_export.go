// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/fraudscope/internal/logging"
)

// ExportGroupReport writes a grouped report to <dir>/<report name>.csv and
// returns the file path.
func (db *DB) ExportGroupReport(ctx context.Context, d Dimension, limit int, dir string) (string, error) {
	query, err := buildGroupSQL(d, limit, false)
	if err != nil {
		return "", err
	}
	return db.exportCSV(ctx, query, dir, d.ReportName())
}

// ExportRepeatFraudCards writes the repeat fraud card report as CSV.
func (db *DB) ExportRepeatFraudCards(ctx context.Context, minFrauds, limit int, dir string) (string, error) {
	return db.exportCSV(ctx, buildRepeatFraudCardsSQL(minFrauds, limit), dir, ReportRepeatFraudCards)
}

// ExportHighRiskMerchants writes the high-risk merchant report as CSV.
func (db *DB) ExportHighRiskMerchants(ctx context.Context, minTxns, minFrauds, limit int, dir string) (string, error) {
	return db.exportCSV(ctx, buildHighRiskMerchantsSQL(minTxns, minFrauds, limit), dir, ReportHighRiskMerchants)
}

// exportCSV runs COPY (query) TO '<dir>/<name>.csv'. The query must not take
// parameters; every caller builds it from whitelisted fragments and integers.
func (db *DB) exportCSV(ctx context.Context, query, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	outputPath := filepath.Join(dir, name+".csv")
	copySQL := fmt.Sprintf("COPY (%s) TO %s (HEADER, DELIMITER ',')", query, quoteLiteral(outputPath))

	ctx, cancel := db.ensureBulkContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, copySQL)
	observeQuery("export", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", name, err)
	}

	logging.Debug().Str("report", name).Str("path", outputPath).Msg("Report exported")
	return outputPath, nil
}

// quoteLiteral returns s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
