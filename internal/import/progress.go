// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package csvimport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	// progressKeyPrefix prefixes every BadgerDB key written by BadgerProgress.
	progressKeyPrefix = "import:csv:progress:"
)

func progressKey(fp Fingerprint) []byte {
	return []byte(progressKeyPrefix + fp.Key())
}

// BadgerProgress implements ProgressTracker using BadgerDB for persistence.
// This enables resumable imports across runs.
type BadgerProgress struct {
	db    *badger.DB
	owned bool
}

// NewBadgerProgress creates a progress tracker on an already open BadgerDB.
// The caller keeps ownership of db.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

// OpenBadgerProgress opens (or creates) a BadgerDB at dir for progress tracking.
func OpenBadgerProgress(dir string) (*BadgerProgress, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create progress directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable BadgerDB's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}
	p := NewBadgerProgress(db)
	p.owned = true
	return p, nil
}

// Save persists the current import progress to BadgerDB.
func (p *BadgerProgress) Save(_ context.Context, stats *ImportStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey(stats.Source), data)
	})
}

// Load retrieves the saved progress for fp.
// Returns nil, nil if no progress has been saved.
func (p *BadgerProgress) Load(_ context.Context, fp Fingerprint) (*ImportStats, error) {
	var (
		stats ImportStats
		found bool
	)

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(fp))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stats)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	if !found {
		return nil, nil
	}
	return &stats, nil
}

// Clear removes all saved progress.
func (p *BadgerProgress) Clear(_ context.Context) error {
	if err := p.db.DropPrefix([]byte(progressKeyPrefix)); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}

// Close closes the underlying BadgerDB if this tracker opened it.
func (p *BadgerProgress) Close() error {
	if !p.owned {
		return nil
	}
	return p.db.Close()
}

// InMemoryProgress implements ProgressTracker using in-memory storage.
// This is useful for testing or for in-memory databases where resuming
// makes no sense.
type InMemoryProgress struct {
	mu    sync.Mutex
	stats map[string]ImportStats
}

// NewInMemoryProgress creates a new in-memory progress tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{stats: make(map[string]ImportStats)}
}

// Save stores a copy of the progress in memory.
func (p *InMemoryProgress) Save(_ context.Context, stats *ImportStats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats[stats.Source.Key()] = *stats
	return nil
}

// Load retrieves a copy of the progress for fp.
func (p *InMemoryProgress) Load(_ context.Context, fp Fingerprint) (*ImportStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats, ok := p.stats[fp.Key()]
	if !ok {
		return nil, nil
	}
	return &stats, nil
}

// Clear removes all stored progress.
func (p *InMemoryProgress) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = make(map[string]ImportStats)
	return nil
}

// Close is a no-op.
func (p *InMemoryProgress) Close() error {
	return nil
}
