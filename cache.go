package dynload

import (
	"slices"
	"sync"
)

// Cache records URLs that loaded successfully. Entries are never removed.
type Cache struct {
	mu    sync.RWMutex
	store map[string]string
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{store: make(map[string]string)}
}

// Has reports whether url has loaded successfully before.
func (c *Cache) Has(url string) bool {
	c.mu.RLock()
	_, ok := c.store[url]
	c.mu.RUnlock()
	return ok
}

// Record marks url as loaded under name. Recording an already cached url
// keeps the original name.
func (c *Cache) Record(url, name string) {
	c.mu.Lock()
	if _, ok := c.store[url]; !ok {
		c.store[url] = name
	}
	c.mu.Unlock()
}

// Name returns the name url was first cached under.
func (c *Cache) Name(url string) (string, bool) {
	c.mu.RLock()
	name, ok := c.store[url]
	c.mu.RUnlock()
	return name, ok
}

// URLs returns the cached URLs in sorted order.
func (c *Cache) URLs() []string {
	c.mu.RLock()
	urls := make([]string, 0, len(c.store))
	for url := range c.store {
		urls = append(urls, url)
	}
	c.mu.RUnlock()
	slices.Sort(urls)
	return urls
}

// Len returns the number of cached URLs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
