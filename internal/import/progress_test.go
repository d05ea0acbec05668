// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package csvimport

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var testFingerprint = Fingerprint{
	Path:    "/data/fraudTest.csv",
	Size:    1024,
	ModTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
}

// progressTrackers returns one of each tracker implementation.
func progressTrackers(t *testing.T) map[string]ProgressTracker {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Suppress badger logs during tests
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return map[string]ProgressTracker{
		"memory": NewInMemoryProgress(),
		"badger": NewBadgerProgress(db),
	}
}

func TestProgressTrackers(t *testing.T) {
	ctx := context.Background()

	for name, progress := range progressTrackers(t) {
		t.Run(name, func(t *testing.T) {
			loaded, err := progress.Load(ctx, testFingerprint)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if loaded != nil {
				t.Fatalf("Load() before Save = %+v, want nil", loaded)
			}

			stats := &ImportStats{
				Source:            testFingerprint,
				TotalRows:         1000,
				Processed:         500,
				Imported:          480,
				Skipped:           15,
				Duplicates:        5,
				StartTime:         time.Now().Add(-5 * time.Minute).UTC(),
				LastProcessedLine: 501,
			}
			if err := progress.Save(ctx, stats); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			// Saved copies are independent of the caller's struct
			stats.Processed = 900

			loaded, err = progress.Load(ctx, testFingerprint)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if loaded == nil {
				t.Fatal("Load() = nil after Save")
			}
			if loaded.Processed != 500 || loaded.LastProcessedLine != 501 || loaded.Duplicates != 5 {
				t.Errorf("Load() = %+v", loaded)
			}
			if loaded.Source.Key() != testFingerprint.Key() {
				t.Errorf("Source key = %s, want %s", loaded.Source.Key(), testFingerprint.Key())
			}

			// A modified file is a different source
			changed := testFingerprint
			changed.Size++
			if other, err := progress.Load(ctx, changed); err != nil || other != nil {
				t.Errorf("Load(changed) = %+v, %v; want nil, nil", other, err)
			}

			if err := progress.Clear(ctx); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if loaded, _ := progress.Load(ctx, testFingerprint); loaded != nil {
				t.Errorf("Load() after Clear = %+v, want nil", loaded)
			}
		})
	}
}

func TestOpenBadgerProgress_Persists(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "progress")

	p, err := OpenBadgerProgress(dir)
	if err != nil {
		t.Fatalf("OpenBadgerProgress() error = %v", err)
	}
	if err := p.Save(ctx, &ImportStats{Source: testFingerprint, Completed: true}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	p, err = OpenBadgerProgress(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer p.Close()

	loaded, err := p.Load(ctx, testFingerprint)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil || !loaded.Completed {
		t.Errorf("Load() after reopen = %+v, want completed", loaded)
	}
}

func TestImportStats(t *testing.T) {
	t.Run("duration of a running import", func(t *testing.T) {
		stats := &ImportStats{StartTime: time.Now().Add(-5 * time.Minute)}
		if d := stats.Duration(); d < 4*time.Minute || d > 6*time.Minute {
			t.Errorf("Duration() = %v, want ~5m", d)
		}
	})

	t.Run("duration of a finished import", func(t *testing.T) {
		start := time.Now().Add(-10 * time.Minute)
		stats := &ImportStats{StartTime: start, EndTime: start.Add(5 * time.Minute)}
		if d := stats.Duration(); d != 5*time.Minute {
			t.Errorf("Duration() = %v, want 5m", d)
		}
	})

	t.Run("zero start", func(t *testing.T) {
		stats := &ImportStats{}
		if stats.Duration() != 0 || stats.RowsPerSecond() != 0 || stats.Progress() != 0 {
			t.Errorf("zero stats = %v/%v/%v", stats.Duration(), stats.RowsPerSecond(), stats.Progress())
		}
	})

	t.Run("progress counts resumed rows", func(t *testing.T) {
		tests := []struct {
			name  string
			stats ImportStats
			want  float64
		}{
			{"fresh", ImportStats{TotalRows: 200, Processed: 50}, 25},
			{"resumed", ImportStats{TotalRows: 200, Processed: 50, ResumedFromLine: 101}, 75},
			{"capped", ImportStats{TotalRows: 10, Processed: 50}, 100},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.stats.Progress(); got != tt.want {
					t.Errorf("Progress() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("rows per second", func(t *testing.T) {
		start := time.Now()
		stats := &ImportStats{Processed: 1000, StartTime: start, EndTime: start.Add(10 * time.Second)}
		if got := stats.RowsPerSecond(); got != 100 {
			t.Errorf("RowsPerSecond() = %v, want 100", got)
		}
	})
}

func TestProgressSummary_Status(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		stats   ImportStats
		running bool
		want    string
	}{
		{"running", ImportStats{StartTime: now}, true, "running"},
		{"pending", ImportStats{}, false, "pending"},
		{"completed", ImportStats{StartTime: now, EndTime: now, Completed: true}, false, "completed"},
		{"already imported", ImportStats{Completed: true, AlreadyImported: true}, false, "already_imported"},
		{"partial", ImportStats{StartTime: now, EndTime: now}, false, "partial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := tt.stats.ToSummary(tt.running)
			if summary.Status != tt.want {
				t.Errorf("Status = %s, want %s", summary.Status, tt.want)
			}
		})
	}
}

func TestFingerprintFile(t *testing.T) {
	path := writeCSV(t, datasetHeader)

	fp, err := FingerprintFile(path)
	if err != nil {
		t.Fatalf("FingerprintFile() error = %v", err)
	}
	if !filepath.IsAbs(fp.Path) || fp.Size == 0 || fp.ModTime.IsZero() {
		t.Errorf("FingerprintFile() = %+v", fp)
	}

	if _, err := FingerprintFile(filepath.Dir(path)); err == nil {
		t.Error("FingerprintFile(dir) error = nil, want error")
	}
	if _, err := FingerprintFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("FingerprintFile(missing) error = nil, want error")
	}
}
