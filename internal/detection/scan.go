// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package detection

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/fraudscope/internal/models"
)

// scanParams describes one detector variant.
type scanParams struct {
	window time.Duration
	limit  int

	// keep filters transactions before partitioning.
	keep func(*models.Transaction) bool

	// match is called for every in-window pair and decides whether it is reported.
	match func(t1, t2 *models.Transaction) (models.AnomalyPair, bool)

	// better is the ranking order, a strict total order over pairs.
	better func(a, b *models.AnomalyPair) bool
}

// partitionByAccount groups transactions by account and sorts every
// partition by (timestamp, id). Partitions are returned in account id order.
func partitionByAccount(txns []models.Transaction, keep func(*models.Transaction) bool) [][]*models.Transaction {
	byAccount := make(map[string][]*models.Transaction)
	for i := range txns {
		t := &txns[i]
		if keep != nil && !keep(t) {
			continue
		}
		byAccount[t.AccountID] = append(byAccount[t.AccountID], t)
	}

	accounts := make([]string, 0, len(byAccount))
	for account := range byAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	partitions := make([][]*models.Transaction, 0, len(accounts))
	for _, account := range accounts {
		part := byAccount[account]
		if len(part) < 2 {
			continue
		}
		sort.Slice(part, func(i, j int) bool {
			if !part[i].Timestamp.Equal(part[j].Timestamp) {
				return part[i].Timestamp.Before(part[j].Timestamp)
			}
			return part[i].ID < part[j].ID
		})
		partitions = append(partitions, part)
	}
	return partitions
}

// scanPartition enumerates the pairs (t1, t2) with t1.ts < t2.ts <= t1.ts+window.
//
// lo is the first index whose timestamp is strictly after t1 and hi is the
// first index whose timestamp is after t1+window. Both only move forward as
// t1 advances, since the partition is sorted.
func scanPartition(part []*models.Transaction, params scanParams, top *topK) {
	lo, hi := 0, 0
	for i, t1 := range part {
		if lo < i+1 {
			lo = i + 1
		}
		for lo < len(part) && !part[lo].Timestamp.After(t1.Timestamp) {
			lo++
		}
		if hi < lo {
			hi = lo
		}
		end := t1.Timestamp.Add(params.window)
		for hi < len(part) && !part[hi].Timestamp.After(end) {
			hi++
		}

		for j := lo; j < hi; j++ {
			t2 := part[j]
			if t1.ID == t2.ID {
				continue
			}
			if pair, ok := params.match(t1, t2); ok {
				top.Offer(pair)
			}
		}
	}
}

// scanPartitions runs the scan over all partitions, fanning out to workers
// when more than one is configured. Partition i goes to worker i % workers.
func scanPartitions(ctx context.Context, partitions [][]*models.Transaction, params scanParams, workers int) ([]models.AnomalyPair, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(partitions) {
		workers = max(len(partitions), 1)
	}

	results := make([]*topK, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		top := newTopK(params.limit, params.better)
		results[w] = top
		g.Go(func() error {
			for i := w; i < len(partitions); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				scanPartition(partitions[i], params, top)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeTopK(results, params.limit, params.better), nil
}
