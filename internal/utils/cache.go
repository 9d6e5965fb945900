package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem pairs a cached value with its expiry.
type CacheItem[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache is a size-bounded LRU whose entries also expire after a TTL.
type Cache[V any] struct {
	lruCache *lru.Cache[string, CacheItem[V]]
	now      func() time.Time
}

func NewCache[V any](size int) (*Cache[V], error) {
	l, err := lru.New[string, CacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lruCache: l, now: time.Now}, nil
}

// Set stores value under key for ttl.
func (c *Cache[V]) Set(key string, data V, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem[V]{
		Data:      data,
		ExpiresAt: c.now().Add(ttl),
	})
}

// Get returns the cached value and true, or the zero value and false when absent or expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := c.lruCache.Get(key)
	if !ok {
		return zero, false
	}

	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return zero, false
	}

	return val.Data, true
}

// Delete evicts key.
func (c *Cache[V]) Delete(key string) {
	c.lruCache.Remove(key)
}

func (c *Cache[V]) Len() int {
	return c.lruCache.Len()
}
