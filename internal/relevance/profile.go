// Package relevance scores catalog items against a task profile.
//
// A Profile captures what the current task needs: free-text
// description, pinned item IDs, and a capacity budget. Scoring is
// lexical and heuristic — a weighted sum of independent signal
// functions, each normalized to [0,1] — not semantic. Signals are
// pure and individually testable so alternative ones can be added
// without touching the selector.
package relevance

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/MarianaDuarte/focal/internal/catalog"
)

// ErrInvalidProfile is returned when a task profile is malformed.
// Unlike per-item scoring faults, this fails the whole call.
var ErrInvalidProfile = errors.New("relevance: invalid profile")

// DefaultWarnThreshold is the fraction of the capacity budget at which
// the monitor starts warning.
const DefaultWarnThreshold = 0.83

// Profile is the query against which relevance is computed. It is
// constructed per call and never persisted by the selector.
type Profile struct {
	Description    string
	Pins           []string
	Keywords       []string
	CapacityBudget int64
	WarnThreshold  float64
}

// NewProfile builds a profile from a task description, deriving the
// keyword set and normalizing pins. WarnThreshold defaults to
// DefaultWarnThreshold.
func NewProfile(description string, pins []string, budget int64) Profile {
	seen := make(map[string]bool, len(pins))
	norm := make([]string, 0, len(pins))
	for _, p := range pins {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		norm = append(norm, p)
	}
	sort.Strings(norm)

	return Profile{
		Description:    description,
		Pins:           norm,
		Keywords:       Keywords(description),
		CapacityBudget: budget,
		WarnThreshold:  DefaultWarnThreshold,
	}
}

// Validate checks the structural invariants of the profile.
func (p Profile) Validate() error {
	if p.CapacityBudget <= 0 {
		return fmt.Errorf("%w: capacity budget must be positive, got %d", ErrInvalidProfile, p.CapacityBudget)
	}
	if p.WarnThreshold <= 0 || p.WarnThreshold >= 1 {
		return fmt.Errorf("%w: warn threshold must be in (0,1), got %g", ErrInvalidProfile, p.WarnThreshold)
	}
	return nil
}

// Pinned reports whether id is forced into the working set. Pins are
// scanned linearly so a hand-built Profile need not keep them sorted.
func (p Profile) Pinned(id string) bool {
	for _, pin := range p.Pins {
		if pin == id {
			return true
		}
	}
	return false
}

// stopwords are tokens too common to carry relevance signal.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"that": true, "this": true, "are": true, "was": true, "will": true,
	"into": true, "when": true, "then": true, "them": true, "they": true,
	"have": true, "has": true, "all": true, "any": true, "not": true,
	"new": true, "add": true, "fix": true, "use": true, "using": true,
}

// Keywords tokenizes a task description into the deduplicated,
// lowercased keyword set used for overlap scoring. Tokens shorter than
// three runes and stopwords are dropped.
func Keywords(description string) []string {
	fields := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	var kws []string
	for _, f := range fields {
		if len(f) < 3 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		kws = append(kws, f)
	}
	sort.Strings(kws)
	return kws
}

// Weights holds the scoring configuration folded into the profile
// signature: per-kind multipliers and the recency half-life. Changing
// either produces a new signature, which naturally invalidates cached
// scores without a separate code path.
type Weights struct {
	Kind            map[catalog.Kind]float64
	RecencyHalfLife time.Duration
}

// DefaultWeights favors standards and specs over generic source, the
// profile observed to work for planning-style tasks.
func DefaultWeights() Weights {
	return Weights{
		Kind: map[catalog.Kind]float64{
			catalog.KindSpec:       1.4,
			catalog.KindStandard:   1.3,
			catalog.KindProductDoc: 1.1,
			catalog.KindSourceCode: 1.0,
			catalog.KindOther:      0.8,
		},
		RecencyHalfLife: 7 * 24 * time.Hour,
	}
}

// KindMultiplier returns the configured multiplier for k, defaulting
// to 1.0 for unlisted kinds.
func (w Weights) KindMultiplier(k catalog.Kind) float64 {
	if m, ok := w.Kind[k]; ok && m > 0 {
		return m
	}
	return 1.0
}

// Signature computes the cache signature for a (profile, weights)
// pair: a hash over keywords, pins, kind multipliers, and the recency
// half-life, in canonical order.
func Signature(p Profile, w Weights) string {
	var b strings.Builder
	b.WriteString("v1")

	b.WriteString("|kw=")
	b.WriteString(strings.Join(p.Keywords, ","))

	b.WriteString("|pins=")
	b.WriteString(strings.Join(p.Pins, ","))

	kinds := make([]string, 0, len(w.Kind))
	for k, m := range w.Kind {
		kinds = append(kinds, fmt.Sprintf("%s:%g", k, m))
	}
	sort.Strings(kinds)
	b.WriteString("|kinds=")
	b.WriteString(strings.Join(kinds, ","))

	fmt.Fprintf(&b, "|halflife=%d", w.RecencyHalfLife)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
