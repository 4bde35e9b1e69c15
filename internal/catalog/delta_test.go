package catalog

import (
	"reflect"
	"testing"
	"time"
)

func snapOf(items ...Item) *Snapshot {
	return NewSnapshot("s", "/scope", time.Unix(0, 0), items)
}

func TestDiff(t *testing.T) {
	prev := snapOf(
		Item{ID: "a.go", Digest: "d1"},
		Item{ID: "b.go", Digest: "d2"},
		Item{ID: "c.go", Digest: "d3"},
	)
	cur := snapOf(
		Item{ID: "a.go", Digest: "d1"},     // unchanged
		Item{ID: "b.go", Digest: "d2-new"}, // changed
		Item{ID: "d.go", Digest: "d4"},     // added
	)

	d := Diff(prev, cur)

	if !reflect.DeepEqual(d.Added, []string{"d.go"}) {
		t.Errorf("Added = %v, want [d.go]", d.Added)
	}
	if !reflect.DeepEqual(d.Changed, []string{"b.go"}) {
		t.Errorf("Changed = %v, want [b.go]", d.Changed)
	}
	if !reflect.DeepEqual(d.Removed, []string{"c.go"}) {
		t.Errorf("Removed = %v, want [c.go]", d.Removed)
	}
	if d.Empty() {
		t.Error("Empty() = true for a non-empty delta")
	}

	if got := d.Stale(); !reflect.DeepEqual(got, []string{"b.go", "c.go"}) {
		t.Errorf("Stale = %v, want [b.go c.go]", got)
	}
}

func TestDiff_NoChanges(t *testing.T) {
	snap := snapOf(Item{ID: "a.go", Digest: "d1"})
	d := Diff(snap, snapOf(Item{ID: "a.go", Digest: "d1"}))

	if !d.Empty() {
		t.Errorf("Empty() = false for identical snapshots: %+v", d)
	}
	if got := d.Stale(); len(got) != 0 {
		t.Errorf("Stale = %v, want empty", got)
	}
}

func TestDiff_NilPrevious(t *testing.T) {
	cur := snapOf(Item{ID: "b.go", Digest: "d2"}, Item{ID: "a.go", Digest: "d1"})
	d := Diff(nil, cur)

	if !reflect.DeepEqual(d.Added, []string{"a.go", "b.go"}) {
		t.Errorf("Added = %v, want all current items", d.Added)
	}
	if len(d.Changed) != 0 || len(d.Removed) != 0 {
		t.Errorf("nil previous produced Changed=%v Removed=%v", d.Changed, d.Removed)
	}
}

func TestDiff_NilCurrent(t *testing.T) {
	d := Diff(snapOf(Item{ID: "a.go", Digest: "d1"}), nil)
	if !d.Empty() {
		t.Errorf("Diff(prev, nil) = %+v, want empty", d)
	}
}

func TestDiff_MetadataDriftWithoutDigestChange(t *testing.T) {
	prev := snapOf(Item{ID: "a.go", Digest: "d1", SizeBytes: 10, LastChanged: time.Unix(100, 0)})
	cur := snapOf(Item{ID: "a.go", Digest: "d1", SizeBytes: 10, LastChanged: time.Unix(999, 0)})

	if d := Diff(prev, cur); !d.Empty() {
		t.Errorf("mtime drift with same digest counted as change: %+v", d)
	}
}
