// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package detection

import (
	"container/heap"
	"sort"

	"github.com/tomtom215/fraudscope/internal/models"
)

// rapidBetter orders rapid-succession pairs by minutes apart, ascending.
func rapidBetter(a, b *models.AnomalyPair) bool {
	if a.MinutesApart != b.MinutesApart {
		return a.MinutesApart < b.MinutesApart
	}
	return tieBreak(a, b)
}

// geoBetter orders geographic pairs by distance, descending.
func geoBetter(a, b *models.AnomalyPair) bool {
	da, db := pairDistance(a), pairDistance(b)
	if da != db {
		return da > db
	}
	return tieBreak(a, b)
}

func pairDistance(p *models.AnomalyPair) float64 {
	if p.DistanceMiles == nil {
		return 0
	}
	return *p.DistanceMiles
}

// tieBreak orders by account id, then txn1 id, then txn2 id.
func tieBreak(a, b *models.AnomalyPair) bool {
	if a.AccountID != b.AccountID {
		return a.AccountID < b.AccountID
	}
	if a.Txn1ID != b.Txn1ID {
		return a.Txn1ID < b.Txn1ID
	}
	return a.Txn2ID < b.Txn2ID
}

// topK keeps the best limit pairs seen so far. With limit <= 0 it keeps all.
// The heap root is the worst kept pair.
type topK struct {
	better func(a, b *models.AnomalyPair) bool
	pairs  []models.AnomalyPair
	limit  int
}

func newTopK(limit int, better func(a, b *models.AnomalyPair) bool) *topK {
	return &topK{limit: limit, better: better}
}

// Offer adds p if it ranks among the best limit pairs.
func (t *topK) Offer(p models.AnomalyPair) {
	if t.limit <= 0 {
		t.pairs = append(t.pairs, p)
		return
	}
	if len(t.pairs) < t.limit {
		heap.Push(t, p)
		return
	}
	if t.better(&p, &t.pairs[0]) {
		t.pairs[0] = p
		heap.Fix(t, 0)
	}
}

// Sorted returns the kept pairs, best first.
func (t *topK) Sorted() []models.AnomalyPair {
	out := make([]models.AnomalyPair, len(t.pairs))
	copy(out, t.pairs)
	sort.Slice(out, func(i, j int) bool { return t.better(&out[i], &out[j]) })
	return out
}

// heap.Interface, worst pair first.
func (t *topK) Len() int           { return len(t.pairs) }
func (t *topK) Less(i, j int) bool { return t.better(&t.pairs[j], &t.pairs[i]) }
func (t *topK) Swap(i, j int)      { t.pairs[i], t.pairs[j] = t.pairs[j], t.pairs[i] }

func (t *topK) Push(x any) {
	t.pairs = append(t.pairs, x.(models.AnomalyPair))
}

func (t *topK) Pop() any {
	n := len(t.pairs)
	p := t.pairs[n-1]
	t.pairs = t.pairs[:n-1]
	return p
}

// mergeTopK combines per-worker results into one ranked, truncated list.
func mergeTopK(parts []*topK, limit int, better func(a, b *models.AnomalyPair) bool) []models.AnomalyPair {
	merged := newTopK(limit, better)
	for _, part := range parts {
		for _, p := range part.pairs {
			merged.Offer(p)
		}
	}
	return merged.Sorted()
}
