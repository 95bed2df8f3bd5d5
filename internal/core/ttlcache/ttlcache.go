// Package ttlcache is a generic key value cache with lazy expiry
//
// Expired entries are absent on read and evicted by that read; SweepExpired removes
// the rest. There is no background timer. A bounded cache evicts the oldest
// inserted entry when full. Eviction order is insertion order, not access order,
// so this is FIFO and not a true LRU.
package ttlcache

import (
	"container/list"
	"sync"
	"time"
)

// Entry is a stored value with its insertion time and lifetime
type Entry[V any] struct {
	Value    V
	StoredAt time.Time
	TTL      time.Duration
}

// Valid reports whether the entry is still live at now
func (e Entry[V]) Valid(now time.Time) bool {
	return now.Sub(e.StoredAt) < e.TTL
}

// Options configures a cache
type Options struct {
	// TTL is the default lifetime for Set
	TTL time.Duration
	// Capacity bounds the number of entries, 0 means unbounded
	Capacity int
	// Now is the clock seam, defaults to time.Now
	Now func() time.Time
}

type slot[K comparable, V any] struct {
	key   K
	entry Entry[V]
}

// Cache is safe for concurrent use
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	cap   int
	now   func() time.Time
	items map[K]*list.Element
	order *list.List // front is oldest inserted
}

// New builds a cache from opts
func New[K comparable, V any](opts Options) *Cache[K, V] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Minute
	}
	if opts.Capacity < 0 {
		opts.Capacity = 0
	}
	return &Cache[K, V]{
		ttl:   opts.TTL,
		cap:   opts.Capacity,
		now:   opts.Now,
		items: make(map[K]*list.Element),
		order: list.New(),
	}
}

// Get returns the value for key if present and live
// an expired entry is evicted by this call
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	s := el.Value.(*slot[K, V])
	if !s.entry.Valid(c.now()) {
		c.removeElement(el)
		return zero, false
	}
	return s.entry.Value, true
}

// Entry returns the raw entry for key if present and live
func (c *Cache[K, V]) Entry(key K) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return Entry[V]{}, false
	}
	s := el.Value.(*slot[K, V])
	if !s.entry.Valid(c.now()) {
		c.removeElement(el)
		return Entry[V]{}, false
	}
	return s.entry, true
}

// Has reports whether key is present and live, with the same eviction as Get
func (c *Cache[K, V]) Has(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores value under key with the default TTL
func (c *Cache[K, V]) Set(key K, value V) { c.SetWithTTL(key, value, c.ttl) }

// SetWithTTL overwrites unconditionally and resets the timer
// overwriting keeps the key's original insertion slot for eviction purposes
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := Entry[V]{Value: value, StoredAt: c.now(), TTL: ttl}
	if el, ok := c.items[key]; ok {
		el.Value.(*slot[K, V]).entry = e
		return
	}
	c.items[key] = c.order.PushBack(&slot[K, V]{key: key, entry: e})
	for c.cap > 0 && c.order.Len() > c.cap {
		c.removeElement(c.order.Front())
	}
}

// Delete removes key, reporting whether it was present
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}
	return ok
}

// Clear drops every entry
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]*list.Element)
	c.order.Init()
	c.mu.Unlock()
}

// SweepExpired physically removes every expired entry and returns how many went
func (c *Cache[K, V]) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if !el.Value.(*slot[K, V]).entry.Valid(now) {
			c.removeElement(el)
			n++
		}
		el = next
	}
	return n
}

// Len counts stored entries, including expired ones not yet evicted
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys returns live keys in insertion order
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	out := make([]K, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		s := el.Value.(*slot[K, V])
		if s.entry.Valid(now) {
			out = append(out, s.key)
		}
	}
	return out
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	s := c.order.Remove(el).(*slot[K, V])
	delete(c.items, s.key)
}
