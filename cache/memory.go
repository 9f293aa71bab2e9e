package cache

import (
	"container/list"
	"sync"
	"time"
)

type cacheEntry struct {
	key     string
	value   string
	expires time.Time // zero means never
}

// InMemoryCache is a thread-safe in-memory cache with TTL and an optional
// least-recently-used bound.
type InMemoryCache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List // front is most recently used
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewInMemoryCache creates a new in-memory cache. A non-positive ttl keeps
// entries forever; a non-positive maxEntries leaves the cache unbounded.
func NewInMemoryCache(ttl time.Duration, maxEntries int) *InMemoryCache {
	if ttl < 0 {
		ttl = 0
	}
	return &InMemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	entry := el.Value.(*cacheEntry)
	if c.expired(entry) {
		c.remove(el)
		return "", false
	}
	c.order.MoveToFront(el)
	return entry.value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *InMemoryCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.value, entry.expires = value, expires
		c.order.MoveToFront(el)
		return nil
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, value: value, expires: expires})
	for c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		c.remove(c.order.Back())
	}
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all entries.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Entries returns all live entries.
func (c *InMemoryCache) Entries() (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]string, len(c.items))
	for key, el := range c.items {
		entry := el.Value.(*cacheEntry)
		if c.expired(entry) {
			continue
		}
		result[key] = entry.value
	}
	return result, nil
}

// Close is a no-op.
func (c *InMemoryCache) Close() error {
	return nil
}

func (c *InMemoryCache) expired(e *cacheEntry) bool {
	return !e.expires.IsZero() && c.now().After(e.expires)
}

func (c *InMemoryCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheEntry).key)
}

var (
	_ Store      = (*InMemoryCache)(nil)
	_ Enumerable = (*InMemoryCache)(nil)
)
