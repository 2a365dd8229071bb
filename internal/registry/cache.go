// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"sync"
	"time"
)

// ttlCache is a bounded, time-to-live keyed cache. Entries expire after
// the TTL so cached registry data cannot outlive upstream legislative
// amendments for long; when full, the oldest entry is evicted.
type ttlCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value   any
	addedAt time.Time
}

func newTTLCache(ttl time.Duration, maxSize int) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.addedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *ttlCache) put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = cacheEntry{value: value, addedAt: time.Now()}
}

func (c *ttlCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.addedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.addedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *ttlCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
