// Package lru provides a generic thread-safe LRU cache with count-based and
// size-based eviction.
package lru

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// entry is the list payload for one cached key.
type entry[K comparable, V any] struct {
	key  K
	val  V
	size int64
}

// Cache is a thread-safe generic LRU cache. The front of the list is the
// most recently used entry.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]*list.Element
	order *list.List

	maxEntries int
	maxSize    int64
	curSize    int64
	sizeFunc   func(V) int64

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMaxEntries sets the maximum number of entries.
func WithMaxEntries[K comparable, V any](n int) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.maxEntries = n
	}
}

// WithMaxBytes sets the maximum total size and the function that sizes
// each value.
func WithMaxBytes[K comparable, V any](maxBytes int64, sizeFunc func(V) int64) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.maxSize = maxBytes
		c.sizeFunc = sizeFunc
	}
}

// New creates a cache. At least one capacity limit is required; otherwise
// New panics.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		items: make(map[K]*list.Element),
		order: list.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxEntries <= 0 && c.maxSize <= 0 {
		panic("lru: at least one capacity limit (WithMaxEntries or WithMaxBytes) is required")
	}

	return c
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)
	c.order.MoveToFront(elem)

	return elem.Value.(*entry[K, V]).val, true
}

// Put adds or replaces the value for key. Values larger than the whole
// cache are skipped.
func (c *Cache[K, V]) Put(key K, value V) {
	var size int64
	if c.sizeFunc != nil {
		size = c.sizeFunc(value)
	}

	if c.maxSize > 0 && size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[K, V])
		c.curSize += size - ent.size
		ent.val, ent.size = value, size
		c.order.MoveToFront(elem)
	} else {
		c.items[key] = c.order.PushFront(&entry[K, V]{key: key, val: value, size: size})
		c.curSize += size
	}

	for c.overCapacity() {
		c.evictOldest()
	}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

func (c *Cache[K, V]) overCapacity() bool {
	return (c.maxEntries > 0 && len(c.items) > c.maxEntries) ||
		(c.maxSize > 0 && c.curSize > c.maxSize)
}

func (c *Cache[K, V]) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}

	ent := elem.Value.(*entry[K, V])
	c.order.Remove(elem)
	delete(c.items, ent.key)
	c.curSize -= ent.size
}
