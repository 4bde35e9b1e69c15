package relevance

import (
	"math"
	"strings"
	"time"

	"github.com/MarianaDuarte/focal/internal/catalog"
)

// Fixed weights for the default signal mix. The kind multiplier is
// applied on top of the weighted sum, not mixed into it.
const (
	weightKeyword = 0.7
	weightRecency = 0.3
)

// Env carries the evaluation context shared by all signals in one
// scoring batch: a single "now" so recency is consistent across items,
// and the configured half-life.
type Env struct {
	Now      time.Time
	HalfLife time.Duration
}

// SignalFunc is one independent relevance signal. Implementations must
// be pure, deterministic, and return a value in [0,1].
type SignalFunc func(it catalog.Item, p Profile, env Env) float64

// Signal pairs a signal function with its name and mixing weight.
type Signal struct {
	Name   string
	Weight float64
	Score  SignalFunc
}

// DefaultSignals returns the standard mix: keyword overlap dominates,
// recency breaks the rest.
func DefaultSignals() []Signal {
	return []Signal{
		{Name: "keyword-overlap", Weight: weightKeyword, Score: KeywordOverlap},
		{Name: "recency", Weight: weightRecency, Score: Recency},
	}
}

// KeywordOverlap returns the fraction of profile keywords that appear
// in the item's ID, tags, or content excerpt. Matching is
// case-insensitive (IDs and excerpts are already lowercased) and
// substring-based, so "selector" matches "selector_test.go".
func KeywordOverlap(it catalog.Item, p Profile, _ Env) float64 {
	if len(p.Keywords) == 0 {
		return 0
	}

	id := strings.ToLower(it.ID)
	hits := 0
	for _, kw := range p.Keywords {
		if strings.Contains(id, kw) || tagMatch(it.Tags, kw) || strings.Contains(it.Excerpt, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(p.Keywords))
}

func tagMatch(tags []string, kw string) bool {
	for _, t := range tags {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// Recency decays exponentially with the age of the item's last change:
// 1.0 for a change right now, 0.5 after one half-life, and so on.
// Items with no recorded change time score 0.
func Recency(it catalog.Item, _ Profile, env Env) float64 {
	if it.LastChanged.IsZero() || env.HalfLife <= 0 {
		return 0
	}
	age := env.Now.Sub(it.LastChanged)
	if age < 0 {
		age = 0
	}
	return math.Exp(-math.Ln2 * age.Seconds() / env.HalfLife.Seconds())
}
