// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package csvimport

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Fingerprint identifies one version of a source file.
type Fingerprint struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// FingerprintFile stats path and returns its fingerprint. The path is made
// absolute so the same file imported from different working directories
// resumes the same progress entry.
func FingerprintFile(path string) (Fingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return Fingerprint{}, fmt.Errorf("source %s is a directory", abs)
	}

	return Fingerprint{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC().Truncate(time.Second),
	}, nil
}

// Key returns the progress store key for the fingerprint.
func (f Fingerprint) Key() string {
	return fmt.Sprintf("%s|%d|%d", f.Path, f.Size, f.ModTime.Unix())
}

// ImportStats holds statistics about an import operation.
type ImportStats struct {
	// Source is the fingerprint of the imported file.
	Source Fingerprint `json:"source"`

	// TotalRows is the number of data rows in the file, header excluded.
	TotalRows int64 `json:"total_rows"`

	// Processed is the number of rows read in this run (including skipped).
	Processed int64 `json:"processed"`

	// Imported is the number of rows inserted into the database.
	Imported int64 `json:"imported"`

	// Skipped is the number of malformed rows.
	Skipped int64 `json:"skipped"`

	// Duplicates is the number of rows whose trans_num already existed.
	Duplicates int64 `json:"duplicates"`

	// StartTime is when the import started.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the import completed (zero if still running).
	EndTime time.Time `json:"end_time"`

	// LastProcessedLine is the file line of the last committed row.
	LastProcessedLine int64 `json:"last_processed_line"`

	// ResumedFromLine is the line this run resumed after, 0 for a full read.
	ResumedFromLine int64 `json:"resumed_from_line,omitempty"`

	// Completed is set once every row of the source has been committed.
	Completed bool `json:"completed"`

	// AlreadyImported is set when a completed fingerprint was found and
	// nothing was read.
	AlreadyImported bool `json:"already_imported,omitempty"`
}

// Duration returns the duration of the import operation.
func (s *ImportStats) Duration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Progress returns the import progress as a percentage (0-100).
func (s *ImportStats) Progress() float64 {
	if s.TotalRows == 0 {
		return 0
	}
	done := s.Processed
	if s.ResumedFromLine > 0 {
		// Lines are 1-based and line 1 is the header
		done += s.ResumedFromLine - 1
	}
	if done > s.TotalRows {
		done = s.TotalRows
	}
	return float64(done) / float64(s.TotalRows) * 100
}

// RowsPerSecond returns the import rate.
func (s *ImportStats) RowsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.Processed) / duration
}

// ProgressSummary provides a human-readable summary of import progress.
type ProgressSummary struct {
	Status            string    `json:"status"`
	Progress          float64   `json:"progress"`
	TotalRows         int64     `json:"total_rows"`
	Processed         int64     `json:"processed"`
	Imported          int64     `json:"imported"`
	Skipped           int64     `json:"skipped"`
	Duplicates        int64     `json:"duplicates"`
	RowsPerSec        float64   `json:"rows_per_second"`
	ElapsedSeconds    float64   `json:"elapsed_seconds"`
	StartTime         time.Time `json:"start_time"`
	LastProcessedLine int64     `json:"last_processed_line"`
	ResumedFromLine   int64     `json:"resumed_from_line,omitempty"`
}

// ToSummary converts ImportStats to a ProgressSummary with calculated fields.
func (s *ImportStats) ToSummary(running bool) *ProgressSummary {
	summary := &ProgressSummary{
		Progress:          s.Progress(),
		TotalRows:         s.TotalRows,
		Processed:         s.Processed,
		Imported:          s.Imported,
		Skipped:           s.Skipped,
		Duplicates:        s.Duplicates,
		RowsPerSec:        s.RowsPerSecond(),
		ElapsedSeconds:    s.Duration().Seconds(),
		StartTime:         s.StartTime,
		LastProcessedLine: s.LastProcessedLine,
		ResumedFromLine:   s.ResumedFromLine,
	}

	switch {
	case running:
		summary.Status = "running"
	case s.AlreadyImported:
		summary.Status = "already_imported"
	case s.Completed:
		summary.Status = "completed"
	case s.EndTime.IsZero():
		summary.Status = "pending"
	default:
		summary.Status = "partial"
	}

	return summary
}
