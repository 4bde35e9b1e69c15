package relevance

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/MarianaDuarte/focal/internal/catalog"
	"github.com/MarianaDuarte/focal/internal/scorecache"
)

// Scorer computes relevance scores for catalog items, memoizing them
// in a score cache keyed by (item, profile signature). A cached score
// is reused only while the item's digest is unchanged.
type Scorer struct {
	weights Weights
	signals []Signal
	cache   *scorecache.Cache

	// now is swappable for tests.
	now func() time.Time

	// computed counts actual signal evaluations (cache misses), for
	// tests that verify memoization.
	computed atomic.Int64
}

// NewScorer creates a Scorer with the default signal mix. The cache
// may be nil, in which case every call recomputes.
func NewScorer(w Weights, cache *scorecache.Cache) *Scorer {
	return &Scorer{
		weights: w,
		signals: DefaultSignals(),
		cache:   cache,
		now:     time.Now,
	}
}

// SetSignals replaces the signal mix. Intended for wiring alternative
// scorers (and for tests); not safe to call concurrently with ScoreAll.
func (s *Scorer) SetSignals(signals []Signal) {
	s.signals = signals
}

// Signature returns the cache signature for p under this scorer's
// weights.
func (s *Scorer) Signature(p Profile) string {
	return Signature(p, s.weights)
}

// ComputedCount returns how many scores were actually computed (cache
// misses) since the scorer was created.
func (s *Scorer) ComputedCount() int64 {
	return s.computed.Load()
}

// ScoreAll scores every item in the snapshot against p. It returns the
// score map plus the IDs of degraded items — those that were
// unscannable at catalog time or whose scoring faulted and fell back
// to zero. Per-item faults never abort the batch; a malformed profile
// fails fast with ErrInvalidProfile.
//
// Cancellation is cooperative: ctx is checked between items, and an
// abandoned batch leaves no partially stale records in the cache —
// every record written was computed against the item's current digest.
func (s *Scorer) ScoreAll(ctx context.Context, snap *catalog.Snapshot, p Profile) (map[string]float64, []string, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	sig := s.Signature(p)
	env := Env{Now: s.now(), HalfLife: s.weights.RecencyHalfLife}

	scores := make(map[string]float64, len(snap.Items))
	var degraded []string

	for _, it := range snap.Items {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		if it.HasTag(catalog.TagUnscanned) {
			degraded = append(degraded, it.ID)
		}

		if s.cache != nil {
			if rec, ok := s.cache.Get(it.ID, sig); ok && rec.ValidFor(it.Digest) {
				scores[it.ID] = rec.Score
				continue
			}
		}

		score, faulted := s.scoreItem(it, p, env)
		if faulted {
			degraded = append(degraded, it.ID)
		}
		scores[it.ID] = score

		if s.cache != nil {
			s.cache.Put(scorecache.Record{
				ItemID:    it.ID,
				Signature: sig,
				Score:     score,
				Digest:    it.Digest,
			})
		}
	}

	return scores, dedupe(degraded), nil
}

// scoreItem evaluates the weighted signal sum for one item and applies
// the kind multiplier. A panicking signal degrades the item to score 0
// instead of taking down the batch.
func (s *Scorer) scoreItem(it catalog.Item, p Profile, env Env) (score float64, faulted bool) {
	defer func() {
		if recover() != nil {
			score, faulted = 0, true
		}
	}()

	s.computed.Add(1)

	var sum float64
	for _, sig := range s.signals {
		v := sig.Score(it, p, env)
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		sum += sig.Weight * v
	}
	return sum * s.weights.KindMultiplier(it.Kind), false
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
