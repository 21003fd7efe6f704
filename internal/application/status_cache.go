package application

import (
	"strings"
	"sync"
	"time"
)

// statusCache stores recently read lab statuses so the read-mostly status
// board does not hit the store on every poll. Entries are invalidated on
// update and expire after a short TTL.
type statusCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]statusCacheEntry
}

type statusCacheEntry struct {
	status    LabStatus
	expiresAt time.Time
}

func newStatusCache(ttl time.Duration, maxEntries int, now func() time.Time) *statusCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &statusCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]statusCacheEntry),
	}
}

func (c *statusCache) Get(labName string) (LabStatus, bool) {
	if c == nil {
		return LabStatus{}, false
	}
	key := cacheKey(labName)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return LabStatus{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return LabStatus{}, false
	}
	return entry.status, true
}

func (c *statusCache) Set(status LabStatus) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		// Drop the entry closest to expiry rather than tracking LRU order.
		var oldestKey string
		var oldest time.Time
		for key, entry := range c.entries {
			if oldestKey == "" || entry.expiresAt.Before(oldest) {
				oldestKey = key
				oldest = entry.expiresAt
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[cacheKey(status.LabName)] = statusCacheEntry{
		status:    status,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *statusCache) Invalidate(labName string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, cacheKey(labName))
	c.mu.Unlock()
}

func cacheKey(labName string) string {
	return strings.ToLower(strings.TrimSpace(labName))
}
