// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tomtom215/fraudscope/internal/models"
)

// pairTimeLayout matches the dataset's trans_date_trans_time format.
const pairTimeLayout = models.TimestampLayout

// PairFileBase returns the file name, without extension, for a pair variant.
func PairFileBase(variant models.AnomalyVariant) string {
	return string(variant) + "_pairs"
}

// WritePairs writes pairs to <dir>/<variant>_pairs.csv and .json and returns
// both paths. An empty list still produces both files.
func WritePairs(dir string, variant models.AnomalyVariant, pairs []models.AnomalyPair) ([]string, error) {
	base := filepath.Join(dir, PairFileBase(variant))

	csvPath := base + ".csv"
	if err := writePairsCSVFile(csvPath, variant, pairs); err != nil {
		return nil, err
	}

	if pairs == nil {
		pairs = []models.AnomalyPair{}
	}
	jsonPath := base + ".json"
	if err := writeJSONFile(jsonPath, pairs); err != nil {
		return nil, err
	}

	return []string{csvPath, jsonPath}, nil
}

func writePairsCSVFile(path string, variant models.AnomalyVariant, pairs []models.AnomalyPair) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path is built from the configured output directory
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return WritePairsCSV(f, variant, pairs)
}

// pairColumns returns the CSV header for a variant. Geographic pairs carry
// the distance column.
func pairColumns(variant models.AnomalyVariant) []string {
	cols := []string{"account_id", "txn1_id", "txn2_id", "txn1_time", "txn2_time", "minutes_apart"}
	if variant == models.VariantGeographic {
		cols = append(cols, "distance_miles")
	}
	return append(cols, "txn1_is_fraud", "txn2_is_fraud")
}

// WritePairsCSV writes pairs as CSV with a header row.
func WritePairsCSV(w io.Writer, variant models.AnomalyVariant, pairs []models.AnomalyPair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pairColumns(variant)); err != nil {
		return err
	}

	for i := range pairs {
		p := &pairs[i]
		row := []string{
			p.AccountID,
			p.Txn1ID,
			p.Txn2ID,
			p.Txn1Time.Format(pairTimeLayout),
			p.Txn2Time.Format(pairTimeLayout),
			strconv.FormatFloat(p.MinutesApart, 'f', 2, 64),
		}
		if variant == models.VariantGeographic {
			distance := ""
			if p.DistanceMiles != nil {
				distance = strconv.FormatFloat(*p.DistanceMiles, 'f', 2, 64)
			}
			row = append(row, distance)
		}
		row = append(row, fraudLabel(p.Txn1Fraud), fraudLabel(p.Txn2Fraud))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func fraudLabel(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
