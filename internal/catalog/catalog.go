// Package catalog inventories candidate context items for a bounded scope.
//
// A scan walks the scope root, fingerprints every file it finds, and
// produces an immutable Snapshot. The catalog never mutates sources —
// its only side effect is read I/O. Downstream components (scorer,
// selector) treat a Snapshot as read-only for the duration of a call.
package catalog

import (
	"sort"
	"time"
)

// Kind classifies what role an item plays as context.
type Kind string

const (
	KindSourceCode Kind = "source-code"
	KindStandard   Kind = "standard"
	KindSpec       Kind = "spec"
	KindProductDoc Kind = "product-doc"
	KindOther      Kind = "other"
)

// TagUnscanned marks items whose content could not be inspected
// (binary or unreadable). They stay in the catalog so the scorer can
// still rank them by metadata.
const TagUnscanned = "unscanned"

// Item is a single candidate unit of context.
type Item struct {
	// ID is the item's stable identity: its path relative to the scope
	// root, normalized to forward slashes.
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	SizeBytes   int64     `json:"size_bytes"`
	Digest      string    `json:"digest"`
	LastChanged time.Time `json:"last_changed"`
	Tags        []string  `json:"tags,omitempty"`

	// Excerpt is a lowercased slice of the item's head, used for
	// keyword scoring. It travels with the item through the snapshot
	// store but stays out of the wire representation.
	Excerpt string `json:"-"`
}

// HasTag reports whether tag is present on the item.
func (it Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends tag if absent, keeping Tags sorted for deterministic
// output.
func (it *Item) AddTag(tag string) {
	if it.HasTag(tag) {
		return
	}
	it.Tags = append(it.Tags, tag)
	sort.Strings(it.Tags)
}

// Snapshot is the result of one catalog scan: a point-in-time view of
// every candidate item under a scope. Items are sorted by ID and the
// snapshot must not be mutated after creation.
type Snapshot struct {
	ID      string    `json:"id"`
	Scope   string    `json:"scope"`
	TakenAt time.Time `json:"taken_at"`
	Items   []Item    `json:"items"`

	index map[string]int
}

// NewSnapshot sorts items by ID and builds the lookup index. Callers
// must not mutate items afterwards.
func NewSnapshot(id, scope string, takenAt time.Time, items []Item) *Snapshot {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	s := &Snapshot{ID: id, Scope: scope, TakenAt: takenAt, Items: items}
	s.buildIndex()
	return s
}

func (s *Snapshot) buildIndex() {
	s.index = make(map[string]int, len(s.Items))
	for i, it := range s.Items {
		s.index[it.ID] = i
	}
}

// Lookup returns the item with the given ID, if present.
func (s *Snapshot) Lookup(id string) (Item, bool) {
	if s.index == nil {
		s.buildIndex()
	}
	i, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return s.Items[i], true
}

// TotalSize returns the summed size of all items in the snapshot.
func (s *Snapshot) TotalSize() int64 {
	var total int64
	for _, it := range s.Items {
		total += it.SizeBytes
	}
	return total
}
