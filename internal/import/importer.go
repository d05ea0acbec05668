// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package csvimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tomtom215/fraudscope/internal/config"
	"github.com/tomtom215/fraudscope/internal/logging"
	"github.com/tomtom215/fraudscope/internal/metrics"
	"github.com/tomtom215/fraudscope/internal/models"
	"github.com/tomtom215/fraudscope/internal/validation"
)

// ErrImportRunning is returned when Import is called while another import
// on the same Importer is in progress.
var ErrImportRunning = errors.New("import already in progress")

// Store is the destination of imported transactions.
type Store interface {
	InsertTransactionsBatch(ctx context.Context, txns []*models.Transaction) (inserted, duplicates int, err error)
	Truncate(ctx context.Context) error
}

// ProgressTracker defines the interface for tracking import progress.
type ProgressTracker interface {
	// Save persists progress, keyed by stats.Source.
	Save(ctx context.Context, stats *ImportStats) error

	// Load retrieves saved progress for a source, or nil if there is none.
	Load(ctx context.Context, fp Fingerprint) (*ImportStats, error)

	// Clear removes all saved progress (for fresh imports).
	Clear(ctx context.Context) error
}

// Importer loads a transactions CSV file into a Store.
type Importer struct {
	cfg      *config.ImportConfig
	store    Store
	progress ProgressTracker

	// State
	mu          sync.RWMutex
	running     bool
	stats       *ImportStats
	skipsLogged int
}

// NewImporter creates a new CSV importer. A nil progress tracker keeps
// progress in memory.
func NewImporter(cfg *config.ImportConfig, store Store, progress ProgressTracker) *Importer {
	if progress == nil {
		progress = NewInMemoryProgress()
	}
	return &Importer{
		cfg:      cfg,
		store:    store,
		progress: progress,
	}
}

// Import reads path and inserts its rows in batches.
//
// A source whose fingerprint was completed before is not read again. A
// partially imported source resumes after its last committed line. With
// import.fresh set, saved progress is cleared and the table truncated first.
func (i *Importer) Import(ctx context.Context, path string) (*ImportStats, error) {
	fp, err := FingerprintFile(path)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return nil, ErrImportRunning
	}
	i.running = true
	i.skipsLogged = 0
	i.stats = &ImportStats{
		Source:    fp,
		StartTime: time.Now(),
	}
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.running = false
		i.stats.EndTime = time.Now()
		i.mu.Unlock()
	}()

	ctx = logging.ContextWithLogger(ctx, logging.WithComponent(ctx, "import"))
	log := logging.Ctx(ctx).With().Str("source", fp.Path).Logger()

	resumeAfter, done, err := i.prepare(ctx, fp)
	if err != nil {
		return i.GetStats(), err
	}
	if done {
		log.Info().Msg("Source already imported, skipping")
		return i.GetStats(), nil
	}

	total, err := countFileRows(fp.Path)
	if err != nil {
		return i.GetStats(), err
	}

	i.mu.Lock()
	i.stats.TotalRows = total
	i.stats.ResumedFromLine = resumeAfter
	i.stats.LastProcessedLine = resumeAfter
	i.mu.Unlock()

	if resumeAfter > 0 {
		log.Info().Int64("resume_after_line", resumeAfter).Msg("Resuming import")
	}
	log.Info().Int64("total_rows", total).Int("batch_size", i.batchSize()).Msg("Starting import")

	if err := i.processFile(ctx, fp.Path, resumeAfter); err != nil {
		return i.GetStats(), err
	}

	i.mu.Lock()
	i.stats.Completed = true
	i.stats.EndTime = time.Now()
	stats := *i.stats
	i.mu.Unlock()

	if err := i.progress.Save(ctx, &stats); err != nil {
		log.Warn().Err(err).Msg("Failed to save final progress")
	}

	metrics.RecordImport(stats.Imported, stats.Skipped, stats.Duplicates, stats.Duration())

	log.Info().
		Int64("imported", stats.Imported).
		Int64("skipped", stats.Skipped).
		Int64("duplicates", stats.Duplicates).
		Dur("duration", stats.Duration()).
		Float64("rows_per_second", stats.RowsPerSecond()).
		Msg("Import completed")

	return i.GetStats(), nil
}

// prepare applies fresh mode or looks up saved progress. It returns the line
// to resume after and whether the source is already fully imported.
func (i *Importer) prepare(ctx context.Context, fp Fingerprint) (resumeAfter int64, done bool, err error) {
	if i.cfg.Fresh {
		if err := i.progress.Clear(ctx); err != nil {
			return 0, false, fmt.Errorf("clear progress: %w", err)
		}
		if err := i.store.Truncate(ctx); err != nil {
			return 0, false, fmt.Errorf("truncate: %w", err)
		}
		logging.Ctx(ctx).Info().Msg("Fresh import: progress cleared and table truncated")
		return 0, false, nil
	}

	prev, err := i.progress.Load(ctx, fp)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to load import progress, starting from the beginning")
		return 0, false, nil
	}
	if prev == nil {
		return 0, false, nil
	}

	if prev.Completed {
		i.mu.Lock()
		i.stats.TotalRows = prev.TotalRows
		i.stats.LastProcessedLine = prev.LastProcessedLine
		i.stats.Completed = true
		i.stats.AlreadyImported = true
		i.stats.EndTime = time.Now()
		i.mu.Unlock()
		return 0, true, nil
	}
	return prev.LastProcessedLine, false, nil
}

func countFileRows(path string) (int64, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer closeQuietly(f)
	return CountRows(f)
}

func (i *Importer) batchSize() int {
	if i.cfg.BatchSize <= 0 {
		return 5000
	}
	return i.cfg.BatchSize
}

// processFile reads every row after resumeAfter and commits full batches.
func (i *Importer) processFile(ctx context.Context, path string, resumeAfter int64) error {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer closeQuietly(f)

	reader, err := NewReader(f)
	if err != nil {
		return err
	}
	mapper := NewMapper(reader)

	size := i.batchSize()
	batch := make([]*models.Transaction, 0, size)
	var lastLine int64

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !errors.Is(err, ErrMalformedRow) {
			return err
		}
		if rec.Line <= resumeAfter {
			continue
		}
		lastLine = rec.Line

		if err != nil {
			i.recordSkip(ctx, err)
			continue
		}

		txn, mapErr := mapper.ToTransaction(rec)
		if mapErr != nil {
			i.recordSkip(ctx, mapErr)
			continue
		}

		batch = append(batch, txn)
		if len(batch) >= size {
			if err := i.commitBatch(ctx, batch, lastLine); err != nil {
				return err
			}
			batch = batch[:0]

			// Cancellation is checked between batches only
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	return i.commitBatch(ctx, batch, lastLine)
}

// recordSkip counts a malformed row and logs the first max_logged_skips.
func (i *Importer) recordSkip(ctx context.Context, err error) {
	i.mu.Lock()
	i.stats.Processed++
	i.stats.Skipped++
	logIt := i.skipsLogged < i.cfg.MaxLoggedSkips
	last := i.skipsLogged == i.cfg.MaxLoggedSkips
	i.skipsLogged++
	i.mu.Unlock()

	switch {
	case logIt:
		event := logging.Ctx(ctx).Warn().Err(err)
		var verr *validation.StructValidationError
		if errors.As(err, &verr) {
			event = event.Strs("fields", verr.Fields())
		}
		event.Msg("Skipping malformed row")
	case last && i.cfg.MaxLoggedSkips > 0:
		logging.Ctx(ctx).Warn().Int("max_logged_skips", i.cfg.MaxLoggedSkips).Msg("Further malformed rows will be counted but not logged")
	}
}

// commitBatch inserts batch, updates stats and saves progress up to lastLine.
// An empty batch still advances progress past skipped rows.
func (i *Importer) commitBatch(ctx context.Context, batch []*models.Transaction, lastLine int64) error {
	inserted, duplicates, err := i.store.InsertTransactionsBatch(ctx, batch)
	if err != nil {
		return fmt.Errorf("insert batch ending at line %d: %w", lastLine, err)
	}

	i.mu.Lock()
	i.stats.Processed += int64(len(batch))
	i.stats.Imported += int64(inserted)
	i.stats.Duplicates += int64(duplicates)
	if lastLine > i.stats.LastProcessedLine {
		i.stats.LastProcessedLine = lastLine
	}
	stats := *i.stats
	i.mu.Unlock()

	if err := i.progress.Save(ctx, &stats); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to save progress")
	}

	logging.Ctx(ctx).Debug().
		Float64("progress_percent", stats.Progress()).
		Int64("processed", stats.Processed).
		Int64("total_rows", stats.TotalRows).
		Int64("imported", stats.Imported).
		Int64("skipped", stats.Skipped).
		Int64("duplicates", stats.Duplicates).
		Float64("rows_per_second", stats.RowsPerSecond()).
		Msg("Import progress")

	return nil
}

// GetStats returns a copy of the current import statistics.
func (i *Importer) GetStats() *ImportStats {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.stats == nil {
		return &ImportStats{}
	}

	stats := *i.stats
	return &stats
}

// IsRunning returns whether an import is currently in progress.
func (i *Importer) IsRunning() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.running
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
