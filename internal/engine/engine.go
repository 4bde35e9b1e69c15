// Package engine is the boundary interface of the context selector:
// it takes a task profile plus an immutable catalog snapshot and runs
// the full score → select → monitor pipeline.
//
// The engine itself is stateless per call. The score cache is the only
// shared mutable structure, and it synchronizes internally, so an
// engine is safe to use from concurrent callers — interactive
// re-optimizations and background re-scans included. A delta-driven
// invalidation racing an in-flight call never changes that call's
// result, because the call works off its own snapshot.
package engine

import (
	"context"

	"github.com/MarianaDuarte/focal/internal/catalog"
	"github.com/MarianaDuarte/focal/internal/relevance"
	"github.com/MarianaDuarte/focal/internal/scorecache"
	"github.com/MarianaDuarte/focal/internal/selector"
)

// Engine wires the scorer, cache, selector, and monitor.
type Engine struct {
	scorer *relevance.Scorer
	cache  *scorecache.Cache
}

// New creates an engine scoring with the given weights and memoizing
// into cache.
func New(w relevance.Weights, cache *scorecache.Cache) *Engine {
	return &Engine{
		scorer: relevance.NewScorer(w, cache),
		cache:  cache,
	}
}

// Scorer exposes the underlying scorer, mainly so callers can read its
// computed-score counter.
func (e *Engine) Scorer() *relevance.Scorer {
	return e.scorer
}

// Result is one optimization outcome: the selected working set, the
// monitor's verdict, the IDs of degraded (unscannable or score-faulted)
// items, and the scores the selection was based on.
type Result struct {
	SnapshotID string               `json:"snapshot_id"`
	WorkingSet *selector.WorkingSet `json:"working_set"`
	Verdict    selector.Verdict     `json:"verdict"`
	Degraded   []string             `json:"degraded,omitempty"`
	Scores     map[string]float64   `json:"-"`
}

// Optimize scores every item in the snapshot against p (cache-assisted,
// staleness-checked per digest), selects a working set under the
// budget, and attaches the monitor's verdict. Call-level faults —
// invalid profile, pins exceeding the budget, cancellation — surface
// immediately with no partial result.
func (e *Engine) Optimize(ctx context.Context, snap *catalog.Snapshot, p relevance.Profile) (*Result, error) {
	scores, degraded, err := e.scorer.ScoreAll(ctx, snap, p)
	if err != nil {
		return nil, err
	}

	ws, err := selector.Select(snap, scores, p)
	if err != nil {
		return nil, err
	}

	return &Result{
		SnapshotID: snap.ID,
		WorkingSet: ws,
		Verdict:    selector.Check(ws, p),
		Degraded:   degraded,
		Scores:     scores,
	}, nil
}

// ApplyDelta feeds a catalog delta into the cache, dropping memoized
// scores for every changed or removed item.
func (e *Engine) ApplyDelta(d catalog.Delta) {
	if e.cache == nil {
		return
	}
	for _, id := range d.Stale() {
		e.cache.Invalidate(id)
	}
}
