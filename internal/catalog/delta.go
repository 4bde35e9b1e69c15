package catalog

import "sort"

// Delta describes how a catalog changed between two snapshots. It is
// the invalidation feed for the score cache: every ID in Changed or
// Removed must have its cached scores dropped.
type Delta struct {
	Added   []string `json:"added,omitempty"`
	Changed []string `json:"changed,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// Stale returns the IDs whose cached scores are no longer valid:
// changed and removed items, merged and sorted.
func (d Delta) Stale() []string {
	stale := make([]string, 0, len(d.Changed)+len(d.Removed))
	stale = append(stale, d.Changed...)
	stale = append(stale, d.Removed...)
	sort.Strings(stale)
	return stale
}

// Diff compares two snapshots of the same scope. An item counts as
// changed exactly when its digest differs; size or mtime drift with an
// identical digest is not a change. A nil previous snapshot makes
// every current item an addition.
func Diff(prev, cur *Snapshot) Delta {
	var d Delta
	if cur == nil {
		return d
	}
	if prev == nil {
		for _, it := range cur.Items {
			d.Added = append(d.Added, it.ID)
		}
		return d
	}

	for _, it := range cur.Items {
		old, ok := prev.Lookup(it.ID)
		switch {
		case !ok:
			d.Added = append(d.Added, it.ID)
		case old.Digest != it.Digest:
			d.Changed = append(d.Changed, it.ID)
		}
	}
	for _, it := range prev.Items {
		if _, ok := cur.Lookup(it.ID); !ok {
			d.Removed = append(d.Removed, it.ID)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Changed)
	sort.Strings(d.Removed)
	return d
}
