// Package cache holds the process-local read cache for loaded origin
// documents.
package cache

import (
	"sync"

	"github.com/TalbotKnighton/trendify/collection"
)

// DefaultMaxSize is the default bound on cached documents.
const DefaultMaxSize = 20

// ReadCache maps document paths to their last-loaded collections,
// bounded at maxSize entries.
//
// Eviction is by insertion order: when the cache is full, the entry that
// was first INSERTED goes, regardless of how recently it was read. A
// document that is re-inserted after eviction starts a fresh slot at the
// back of the queue. This is deliberately not an LRU.
//
// The cache is process-local; workers never share it. Safe for
// concurrent use.
type ReadCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*collection.Collection
	queue   []string
}

// NewReadCache creates a cache bounded at maxSize entries. Sizes below 1
// fall back to DefaultMaxSize.
func NewReadCache(maxSize int) *ReadCache {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	return &ReadCache{
		maxSize: maxSize,
		entries: make(map[string]*collection.Collection, maxSize),
	}
}

// Get returns the cached collection for path, if present. A hit does not
// change the eviction order.
func (c *ReadCache) Get(path string) (*collection.Collection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	col, ok := c.entries[path]
	return col, ok
}

// Put stores the collection under path, evicting the earliest-inserted
// entry when full. Re-putting an existing path replaces the value but
// keeps its original queue position.
func (c *ReadCache) Put(path string, col *collection.Collection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[path]; ok {
		c.entries[path] = col
		return
	}

	if len(c.queue) >= c.maxSize {
		oldest := c.queue[0]
		c.queue = c.queue[1:]
		delete(c.entries, oldest)
	}
	c.entries[path] = col
	c.queue = append(c.queue, path)
}

// Len returns the number of cached documents.
func (c *ReadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MaxSize returns the bound.
func (c *ReadCache) MaxSize() int { return c.maxSize }

// Clear drops every entry.
func (c *ReadCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*collection.Collection, c.maxSize)
	c.queue = nil
	c.mu.Unlock()
}
