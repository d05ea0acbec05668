// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fraudscope/internal/detection"
	csvimport "github.com/tomtom215/fraudscope/internal/import"
	"github.com/tomtom215/fraudscope/internal/models"
)

// SummaryFile is the name of the run summary in the output directory.
const SummaryFile = "summary.json"

// DetectionSummary records how the pair lists were produced.
type DetectionSummary struct {
	Engine     string           `json:"engine"`
	Config     detection.Config `json:"config"`
	RapidPairs int              `json:"rapid_pairs"`
	GeoPairs   int              `json:"geo_pairs"`
}

// Summary describes one analysis run.
type Summary struct {
	RunID      string                 `json:"run_id"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	Import     *csvimport.ImportStats `json:"import,omitempty"`
	Overview   *models.Overview       `json:"overview"`
	Detection  DetectionSummary       `json:"detection"`
	Exports    []string               `json:"exports,omitempty"`
}

// writeSummary writes summary.json to dir and returns its path.
func writeSummary(dir string, s *Summary) (string, error) {
	path := filepath.Join(dir, SummaryFile)
	if err := writeJSONFile(path, s); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}

// writeJSONFile writes v as indented JSON, creating the parent directory.
func writeJSONFile(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
