package scorecache

import (
	"fmt"
	"sync"
	"testing"
)

func rec(itemID, sig string, score float64) Record {
	return Record{ItemID: itemID, Signature: sig, Score: score, Digest: "digest-" + itemID}
}

func TestGetPut(t *testing.T) {
	c := New(10)

	if _, ok := c.Get("a", "sig1"); ok {
		t.Fatal("empty cache returned a hit")
	}

	c.Put(rec("a", "sig1", 0.5))
	got, ok := c.Get("a", "sig1")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.Score != 0.5 {
		t.Errorf("Score = %g, want 0.5", got.Score)
	}

	// Same item under a different signature is a distinct entry.
	if _, ok := c.Get("a", "sig2"); ok {
		t.Error("different signature should miss")
	}
}

func TestPutOverwrites(t *testing.T) {
	c := New(10)
	c.Put(rec("a", "sig1", 0.5))
	c.Put(rec("a", "sig1", 0.9))

	got, _ := c.Get("a", "sig1")
	if got.Score != 0.9 {
		t.Errorf("Score = %g, want 0.9 after overwrite", got.Score)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestValidFor(t *testing.T) {
	r := Record{ItemID: "a", Digest: "abc"}
	if !r.ValidFor("abc") {
		t.Error("ValidFor(same digest) = false")
	}
	if r.ValidFor("def") {
		t.Error("ValidFor(other digest) = true")
	}
}

func TestInvalidate(t *testing.T) {
	c := New(10)
	c.Put(rec("a", "sig1", 1))
	c.Put(rec("a", "sig2", 2))
	c.Put(rec("b", "sig1", 3))

	c.Invalidate("a")

	if _, ok := c.Get("a", "sig1"); ok {
		t.Error("a/sig1 survived invalidation")
	}
	if _, ok := c.Get("a", "sig2"); ok {
		t.Error("a/sig2 survived invalidation")
	}
	if _, ok := c.Get("b", "sig1"); !ok {
		t.Error("b/sig1 was dropped by unrelated invalidation")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestInvalidateUnknownItem(t *testing.T) {
	c := New(10)
	c.Put(rec("a", "sig1", 1))
	c.Invalidate("ghost")
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestInvalidateAll(t *testing.T) {
	c := New(10)
	c.Put(rec("a", "sig1", 1))
	c.Put(rec("b", "sig1", 2))

	c.InvalidateAll()

	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a", "sig1"); ok {
		t.Error("entry survived InvalidateAll")
	}

	// Cache stays usable after a full flush.
	c.Put(rec("c", "sig1", 3))
	if _, ok := c.Get("c", "sig1"); !ok {
		t.Error("Put after InvalidateAll missed")
	}
}

func TestLRUEviction(t *testing.T) {
	c := New(3)
	c.Put(rec("a", "s", 1))
	c.Put(rec("b", "s", 2))
	c.Put(rec("c", "s", 3))

	// Touch a so b becomes least recently used.
	c.Get("a", "s")

	c.Put(rec("d", "s", 4))

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if _, ok := c.Get("b", "s"); ok {
		t.Error("b should have been evicted as LRU")
	}
	for _, id := range []string{"a", "c", "d"} {
		if _, ok := c.Get(id, "s"); !ok {
			t.Errorf("%s missing after eviction", id)
		}
	}
}

func TestDefaultMax(t *testing.T) {
	c := New(0)
	if c.max != DefaultMaxEntries {
		t.Errorf("max = %d, want %d", c.max, DefaultMaxEntries)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(64)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("item-%d", i%16)
				c.Put(rec(id, "sig", float64(i)))
				c.Get(id, "sig")
				if i%50 == 0 {
					c.Invalidate(id)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Errorf("Len = %d exceeds bound 64", c.Len())
	}
}
