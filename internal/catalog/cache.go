package catalog

import (
	"sync"
	"time"
)

// categoryCache is a thread-safe TTL cache for the active-category list.
// The browse and home screens hit this list on every render, and the list
// changes only through the admin screens, so a short TTL plus write-through
// invalidation keeps it fresh enough.
type categoryCache struct {
	mu        sync.RWMutex
	entries   []*Category
	expiresAt time.Time
	ttl       time.Duration
}

func newCategoryCache(ttl time.Duration) *categoryCache {
	return &categoryCache{ttl: ttl}
}

// get returns the cached list, or nil when empty or expired.
func (c *categoryCache) get() []*Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entries == nil || time.Now().After(c.expiresAt) {
		return nil
	}
	return c.entries
}

// set stores the list with a fresh TTL.
func (c *categoryCache) set(categories []*Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = categories
	c.expiresAt = time.Now().Add(c.ttl)
}

// invalidate drops the cached list. Called on every category write.
func (c *categoryCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}
