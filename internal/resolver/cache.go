package resolver

import (
	"container/list"
	"sync"
	"time"

	"github.com/zhotheone/discordmusicbot/internal/domain/entities"
)

// cacheEntry holds one resolved input with its expiry
type cacheEntry struct {
	key       string
	tracks    []*entities.Track
	expiresAt time.Time
}

func (e *cacheEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// resultCache is an LRU cache with TTL for resolved inputs. Stream-backed
// URLs go stale, so entries expire rather than living for the process
// lifetime.
type resultCache struct {
	maxSize int
	ttl     time.Duration

	mu        sync.Mutex
	items     map[string]*list.Element
	lruList   *list.List
	hits      int64
	misses    int64
	evictions int64
}

func newResultCache(maxSize int, ttl time.Duration) *resultCache {
	return &resultCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lruList: list.New(),
	}
}

func (c *resultCache) get(key string) ([]*entities.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if entry.expired() {
		c.removeLocked(key)
		c.misses++
		return nil, false
	}

	c.lruList.MoveToFront(elem)
	c.hits++
	return entry.tracks, true
}

func (c *resultCache) put(key string, tracks []*entities.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Time{}
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	if elem, exists := c.items[key]; exists {
		entry := elem.Value.(*cacheEntry)
		entry.tracks = tracks
		entry.expiresAt = expiresAt
		c.lruList.MoveToFront(elem)
		return
	}

	elem := c.lruList.PushFront(&cacheEntry{key: key, tracks: tracks, expiresAt: expiresAt})
	c.items[key] = elem

	if c.lruList.Len() > c.maxSize {
		c.evictOldestLocked()
	}
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lruList.Init()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

func (c *resultCache) stats() (hits, misses, evictions int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions, c.lruList.Len()
}

// cleanupExpired removes all expired entries and reports how many were removed
func (c *resultCache) cleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.items {
		if elem.Value.(*cacheEntry).expired() {
			c.removeLocked(key)
			removed++
		}
	}
	return removed
}

// removeLocked removes an entry (must be called with lock held)
func (c *resultCache) removeLocked(key string) {
	if elem, exists := c.items[key]; exists {
		c.lruList.Remove(elem)
		delete(c.items, key)
	}
}

// evictOldestLocked removes the least recently used entry (must be called with lock held)
func (c *resultCache) evictOldestLocked() {
	elem := c.lruList.Back()
	if elem != nil {
		c.removeLocked(elem.Value.(*cacheEntry).key)
		c.evictions++
	}
}

// runCleanup periodically removes expired entries until stop is closed
func (c *resultCache) runCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-stop:
			return
		}
	}
}
