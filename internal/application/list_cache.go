package application

import (
	"sync"
	"time"
)

// listCache stores recently served per-display event listings. Displays poll
// their listing on every wake, so a short TTL saves repeated queries while
// any write invalidates everything.
type listCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]listCacheEntry
}

type listCacheEntry struct {
	events    []Event
	expiresAt time.Time
}

func newListCache(ttl time.Duration, maxEntries int, now func() time.Time) *listCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &listCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]listCacheEntry),
	}
}

func (c *listCache) Get(key string) ([]Event, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneEvents(entry.events), true
}

func (c *listCache) Put(key string, events []Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		// Full cache: drop everything rather than track recency.
		c.entries = make(map[string]listCacheEntry)
	}
	c.entries[key] = listCacheEntry{
		events:    cloneEvents(events),
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *listCache) InvalidateAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]listCacheEntry)
	c.mu.Unlock()
}

func cloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}
	out := make([]Event, len(events))
	copy(out, events)
	return out
}
