package cache

import "container/list"

// SizeFunc reports the resident size of a value in cache units. The cache
// sums these across all entries and evicts until the sum fits the capacity.
type SizeFunc[V any] func(value V) int64

// EvictFunc is called for each entry the cache evicts to make room. It is
// not called for entries replaced by Put or dropped by Clear.
type EvictFunc[K comparable, V any] func(key K, value V)

// Option configures a Cache at construction time.
type Option[K comparable, V any] func(*Cache[K, V])

// WithSizeFunc sets the function used to measure values. Without it every
// value counts as one unit, so the capacity bounds the number of entries.
func WithSizeFunc[K comparable, V any](f SizeFunc[V]) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.sizeOf = f
	}
}

// WithEvictFunc registers a callback invoked for each evicted entry.
func WithEvictFunc[K comparable, V any](f EvictFunc[K, V]) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = f
	}
}

// entry is one resident key/value pair with its measured size.
type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
}

// Cache is a bounded least-recently-used key/value store with size
// accounting. Get promotes the accessed entry to most recently used; Put
// inserts or replaces and then evicts least-recently-used entries until the
// total size fits the capacity again.
//
// A single value larger than the whole capacity is still admitted: eviction
// never removes the entry just written, so an oversized value ends up as the
// sole resident entry and the cache temporarily exceeds its capacity until
// the next insert pushes it out.
//
// Cache is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	capacity int64
	size     int64
	order    *list.List // front is most recently used
	items    map[K]*list.Element
	sizeOf   SizeFunc[V]
	onEvict  EvictFunc[K, V]
}

// New creates an empty cache bounded by capacity. The capacity is measured
// in the units of the configured SizeFunc, entries by default.
func New[K comparable, V any](capacity int64, opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element),
		sizeOf:   func(V) int64 { return 1 },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key and marks it as the most recently
// used entry. The second return reports whether the key was present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is resident without promoting it.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Put stores value under key as the most recently used entry. Replacing an
// existing key first subtracts the old value's size, so the accounting never
// double-counts. After the write, least-recently-used entries are evicted
// until the total size fits the capacity or only the new entry remains.
func (c *Cache[K, V]) Put(key K, value V) {
	size := c.sizeOf(value)
	if el, ok := c.items[key]; ok {
		en := el.Value.(*entry[K, V])
		c.size -= en.size
		en.value = value
		en.size = size
		c.size += size
		c.order.MoveToFront(el)
	} else {
		el := c.order.PushFront(&entry[K, V]{key: key, value: value, size: size})
		c.items[key] = el
		c.size += size
	}
	c.evict()
}

// evict removes least-recently-used entries while the cache is over
// capacity. It stops at one remaining entry rather than evicting the value
// that was just written.
func (c *Cache[K, V]) evict() {
	for c.size > c.capacity && c.order.Len() > 1 {
		el := c.order.Back()
		en := el.Value.(*entry[K, V])
		c.order.Remove(el)
		delete(c.items, en.key)
		c.size -= en.size
		if c.onEvict != nil {
			c.onEvict(en.key, en.value)
		}
	}
}

// Remove drops the entry stored under key without invoking the eviction
// callback, reporting whether it was resident.
func (c *Cache[K, V]) Remove(key K) bool {
	el, ok := c.items[key]
	if !ok {
		return false
	}
	en := el.Value.(*entry[K, V])
	c.order.Remove(el)
	delete(c.items, key)
	c.size -= en.size
	return true
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	return c.order.Len()
}

// Size returns the total measured size of all resident entries.
func (c *Cache[K, V]) Size() int64 {
	return c.size
}

// Capacity returns the configured capacity.
func (c *Cache[K, V]) Capacity() int64 {
	return c.capacity
}

// Clear drops every entry without invoking the eviction callback.
func (c *Cache[K, V]) Clear() {
	c.order.Init()
	c.items = make(map[K]*list.Element)
	c.size = 0
}
