// Package selector chooses a budget-respecting working set from ranked
// candidates.
//
// This is a knapsack variant solved greedily rather than optimally:
// items are indivisible and at typical corpus sizes an exact optimum is
// not worth the complexity. The greedy pass is best-fit-by-rank — an
// oversized high-score item is skipped, not a stopping point, so
// smaller items further down the ranking still get their chance at the
// remaining slack.
package selector

import (
	"fmt"
	"sort"

	"github.com/MarianaDuarte/focal/internal/catalog"
	"github.com/MarianaDuarte/focal/internal/relevance"
)

// BudgetExceededByPinsError is returned when the pinned items alone do
// not fit the capacity budget. It is recoverable: the caller must raise
// the budget or drop pins — the selector never silently drops one.
type BudgetExceededByPinsError struct {
	PinnedSize int64
	Budget     int64
}

func (e *BudgetExceededByPinsError) Error() string {
	return fmt.Sprintf("selector: pinned items (%d bytes) exceed capacity budget (%d bytes)", e.PinnedSize, e.Budget)
}

// WorkingSet is the selected, budget-respecting subset of items. Items
// are ordered pins first (lexically by ID), then by descending score.
// A working set is rebuilt whole on every selection and never patched
// in place.
type WorkingSet struct {
	Items        []catalog.Item `json:"items"`
	TotalSize    int64          `json:"total_size"`
	TotalScore   float64        `json:"total_score"`
	DroppedCount int            `json:"dropped_count"`
}

// IDs returns the selected item IDs in working-set order.
func (ws *WorkingSet) IDs() []string {
	ids := make([]string, len(ws.Items))
	for i, it := range ws.Items {
		ids[i] = it.ID
	}
	return ids
}

// Select chooses a working set from the snapshot's items under the
// profile's capacity budget. Pins are always included; their size is
// subtracted from the budget before the greedy pass over the rest.
// Pins naming items absent from the snapshot are ignored.
//
// Given identical inputs the output is byte-for-byte identical: ties
// break by smaller size, then lexical ID.
func Select(snap *catalog.Snapshot, scores map[string]float64, p relevance.Profile) (*WorkingSet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var pinned, rankable []catalog.Item
	for _, it := range snap.Items {
		if p.Pinned(it.ID) {
			pinned = append(pinned, it)
		} else {
			rankable = append(rankable, it)
		}
	}

	var pinnedSize int64
	for _, it := range pinned {
		pinnedSize += it.SizeBytes
	}
	remaining := p.CapacityBudget - pinnedSize
	if remaining < 0 {
		return nil, &BudgetExceededByPinsError{PinnedSize: pinnedSize, Budget: p.CapacityBudget}
	}

	sort.Slice(rankable, func(i, j int) bool {
		a, b := rankable[i], rankable[j]
		sa, sb := scores[a.ID], scores[b.ID]
		if sa != sb {
			return sa > sb
		}
		if a.SizeBytes != b.SizeBytes {
			return a.SizeBytes < b.SizeBytes
		}
		return a.ID < b.ID
	})

	// Greedy best-fit-by-rank: skip what overflows, keep testing
	// smaller items further down the ranking. One pass suffices —
	// remaining only shrinks, so a skipped item can never fit later.
	admitted := make(map[string]bool, len(rankable))
	dropped := 0
	for _, it := range rankable {
		if it.SizeBytes <= remaining {
			admitted[it.ID] = true
			remaining -= it.SizeBytes
		} else {
			dropped++
		}
	}

	ws := &WorkingSet{DroppedCount: dropped}

	// Pins first, in lexical ID order (snapshot items are ID-sorted).
	for _, it := range pinned {
		ws.Items = append(ws.Items, it)
		ws.TotalSize += it.SizeBytes
		ws.TotalScore += scores[it.ID]
	}
	// Then ranked admissions, in descending-score order.
	for _, it := range rankable {
		if !admitted[it.ID] {
			continue
		}
		ws.Items = append(ws.Items, it)
		ws.TotalSize += it.SizeBytes
		ws.TotalScore += scores[it.ID]
	}

	return ws, nil
}
