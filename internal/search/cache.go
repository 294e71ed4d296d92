package search

import (
	"strings"
	"sync"
)

// Cache maps a query string to its previously composed result list. Entries
// hold final, composed results only. Pruning on every query mutation keeps
// the cache bounded by the length of the live query.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]Result
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]Result)}
}

// Get returns the cached results for a query.
func (c *Cache) Get(query string) ([]Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	results, ok := c.entries[query]
	return results, ok
}

// Put stores composed results for a query.
func (c *Cache) Put(query string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = results
}

// Invalidate drops every entry whose key is not a prefix of the new query.
// Typing forward keeps warm prefixes; backspacing past a key evicts it.
func (c *Cache) Invalidate(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if !strings.HasPrefix(query, key) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
