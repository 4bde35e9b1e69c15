// Package scorecache memoizes computed relevance scores.
//
// The cache is a pure performance layer: it is bounded by entry count
// with LRU eviction, and a miss only ever costs a recomputation, never
// an error. It is the single structure mutated by concurrent callers,
// so all synchronization lives here — callers need no external
// locking. Two callers racing to Put the same key simply overwrite
// each other with identical values.
package scorecache

import (
	"container/list"
	"sync"
)

// DefaultMaxEntries bounds the cache when no limit is configured.
const DefaultMaxEntries = 4096

// Record is a memoized relevance score for one (item, profile
// signature) pair. It is valid only while the item's digest still
// equals Digest.
type Record struct {
	ItemID    string
	Signature string
	Score     float64
	Digest    string
}

// ValidFor reports whether the record was computed against the given
// content digest.
func (r Record) ValidFor(digest string) bool {
	return r.Digest == digest
}

type key struct {
	itemID    string
	signature string
}

type entry struct {
	key key
	rec Record
}

// Cache is an entry-count-bounded LRU score cache, safe for concurrent
// use.
type Cache struct {
	mu      sync.Mutex
	max     int
	ll      *list.List // front = most recently used
	entries map[key]*list.Element
	byItem  map[string]map[key]struct{}
}

// New creates a cache holding at most maxEntries records. Non-positive
// values fall back to DefaultMaxEntries.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		max:     maxEntries,
		ll:      list.New(),
		entries: make(map[key]*list.Element),
		byItem:  make(map[string]map[key]struct{}),
	}
}

// Get returns the cached record for (itemID, signature), if present,
// and marks it recently used.
func (c *Cache) Get(itemID, signature string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key{itemID, signature}]
	if !ok {
		return Record{}, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).rec, true
}

// Put stores rec, overwriting any existing record for the same key and
// evicting the least recently used entry when full.
func (c *Cache) Put(rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{rec.ItemID, rec.Signature}
	if el, ok := c.entries[k]; ok {
		el.Value.(*entry).rec = rec
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry{key: k, rec: rec})
	c.entries[k] = el
	if c.byItem[rec.ItemID] == nil {
		c.byItem[rec.ItemID] = make(map[key]struct{})
	}
	c.byItem[rec.ItemID][k] = struct{}{}

	for c.ll.Len() > c.max {
		c.removeElement(c.ll.Back())
	}
}

// Invalidate drops every record for itemID across all profile
// signatures. Called from the catalog's delta feed when an item
// changes or disappears.
func (c *Cache) Invalidate(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.byItem[itemID] {
		if el, ok := c.entries[k]; ok {
			c.removeElement(el)
		}
	}
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.entries = make(map[key]*list.Element)
	c.byItem = make(map[string]map[key]struct{})
}

// Len returns the current number of cached records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// removeElement must be called with the lock held.
func (c *Cache) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	e := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.entries, e.key)
	if keys := c.byItem[e.key.itemID]; keys != nil {
		delete(keys, e.key)
		if len(keys) == 0 {
			delete(c.byItem, e.key.itemID)
		}
	}
}
