package geocode

import (
	"context"
	"sort"
)

// Entry is a cached resolution. A nil coordinate marks a negative entry: a
// query that failed before and is not sent to providers again.
type Entry struct {
	Lat *float64
	Lon *float64
}

// PositiveEntry returns an entry holding the given coordinate.
func PositiveEntry(lat, lon float64) Entry {
	return Entry{Lat: &lat, Lon: &lon}
}

// NegativeEntry returns an entry recording a failed resolution.
func NegativeEntry() Entry {
	return Entry{}
}

// Negative reports whether the entry records a failed resolution.
func (e Entry) Negative() bool {
	return e.Lat == nil || e.Lon == nil
}

// Cache maps GeoQuery strings to their last known resolution. At most one
// entry per query; last write wins. Not safe for concurrent use: a cache is
// owned by one batch at a time.
type Cache struct {
	entries map[string]Entry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the entry for q.
func (c *Cache) Get(q string) (Entry, bool) {
	e, ok := c.entries[q]
	return e, ok
}

// Put stores e under q, replacing any previous entry.
func (c *Cache) Put(q string, e Entry) {
	c.entries[q] = e
}

// Len returns the number of entries, negative ones included.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Keys returns all queries in sorted order, so persisted output is stable.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns the number of positive and negative entries.
func (c *Cache) Stats() (positive, negative int) {
	for _, e := range c.entries {
		if e.Negative() {
			negative++
		} else {
			positive++
		}
	}
	return positive, negative
}

// PruneNegative drops every negative entry and returns how many were removed.
func (c *Cache) PruneNegative() int {
	n := 0
	for k, e := range c.entries {
		if e.Negative() {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// CacheStore persists a Cache. Load on a missing backing store returns an
// empty cache, not an error. Save rewrites the store wholesale; concurrent
// batches sharing one store must be serialized by the caller.
type CacheStore interface {
	Load(ctx context.Context) (*Cache, error)
	Save(ctx context.Context, c *Cache) error
	Close() error
}
