// Package memory provides small in-process caches.
package memory

import (
	"container/list"
	"sync"
	"time"
)

type item[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// LRUTTL is a bounded, threadsafe LRU cache whose entries also expire after
// a fixed TTL. Expired entries are dropped lazily on access.
type LRUTTL[K comparable, V any] struct {
	mu    sync.Mutex
	order *list.List
	index map[K]*list.Element
	limit int
	ttl   time.Duration
	now   func() time.Time
}

func NewLRUTTL[K comparable, V any](limit int, ttl time.Duration) *LRUTTL[K, V] {
	if limit <= 0 {
		limit = 1
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &LRUTTL[K, V]{
		order: list.New(),
		index: make(map[K]*list.Element),
		limit: limit,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns a live entry and marks it most recently used.
func (c *LRUTTL[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return zero, false
	}
	it := el.Value.(*item[K, V])
	if !c.now().Before(it.expires) {
		c.drop(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return it.value, true
}

// Set stores value under key and restarts its TTL.
func (c *LRUTTL[K, V]) Set(key K, value V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	expires := c.now().Add(c.ttl)
	if el, ok := c.index[key]; ok {
		it := el.Value.(*item[K, V])
		it.value, it.expires = value, expires
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(&item[K, V]{key: key, value: value, expires: expires})
	for c.order.Len() > c.limit {
		c.drop(c.order.Back())
	}
}

func (c *LRUTTL[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.drop(el)
	}
}

// DeleteFunc removes every entry whose key matches and returns the count.
func (c *LRUTTL[K, V]) DeleteFunc(match func(K) bool) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if match(el.Value.(*item[K, V]).key) {
			c.drop(el)
			n++
		}
		el = next
	}
	return n
}

// Len counts stored entries, including ones that expired but were not yet
// touched.
func (c *LRUTTL[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRUTTL[K, V]) drop(el *list.Element) {
	c.order.Remove(el)
	delete(c.index, el.Value.(*item[K, V]).key)
}
