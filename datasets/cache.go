package datasets

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/rs/zerolog/log"
)

// CacheObserver receives cache events, for example to export them as metrics.
type CacheObserver interface {
	Hit()
	Miss()
	Evict()
}

type nopObserver struct{}

func (nopObserver) Hit()   {}
func (nopObserver) Miss()  {}
func (nopObserver) Evict() {}

// CacheOption configures a Cache.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	capacity int
	observer CacheObserver
}

// WithCapacity bounds the cache to n entries, evicting the oldest inserted
// index first. n <= 0 keeps the cache unbounded.
func WithCapacity(n int) CacheOption {
	return func(o *cacheOptions) {
		o.capacity = n
	}
}

// WithObserver reports hits, misses and evictions to o.
func WithObserver(o CacheObserver) CacheOption {
	return func(opts *cacheOptions) {
		if o != nil {
			opts.observer = o
		}
	}
}

// Cache memoizes the items of its upstream by index.
//
// Without a capacity the cache grows with every distinct index read and
// never forgets; when the upstream changes, call Reset. Get is safe for
// concurrent use. Two concurrent misses on the same index may both read
// upstream, the later store wins.
type Cache[T any] struct {
	src      Source[T]
	capacity int
	observer CacheObserver

	mut   sync.Mutex
	items map[int]T
	order *queue.Queue
}

// NewCache wraps src with a memoizing cache.
func NewCache[T any](src Source[T], opts ...CacheOption) *Cache[T] {
	var o = cacheOptions{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Cache[T]{
		src:      src,
		capacity: o.capacity,
		observer: o.observer,
		items:    make(map[int]T),
	}
	if c.capacity > 0 {
		c.order = queue.New()
	}
	return c
}

// Len returns the upstream length
func (c *Cache[T]) Len() int {
	return c.src.Len()
}

// Get returns the memoized n-th item, reading upstream on the first access.
func (c *Cache[T]) Get(n int) (o T, err error) {
	c.mut.Lock()
	if v, ok := c.items[n]; ok {
		c.mut.Unlock()
		c.observer.Hit()
		return v, nil
	}
	c.mut.Unlock()
	c.observer.Miss()

	o, err = c.src.Get(n)
	if err != nil {
		return o, err
	}

	c.mut.Lock()
	c.store(n, o)
	c.mut.Unlock()
	return o, nil
}

// store inserts under the lock
func (c *Cache[T]) store(n int, v T) {
	if _, ok := c.items[n]; ok {
		c.items[n] = v
		return
	}
	c.items[n] = v
	if c.order == nil {
		return
	}
	c.order.Add(n)
	for c.order.Length() > c.capacity {
		delete(c.items, c.order.Remove().(int))
		c.observer.Evict()
	}
}

// Stored reports how many items are held.
func (c *Cache[T]) Stored() int {
	c.mut.Lock()
	defer c.mut.Unlock()
	return len(c.items)
}

// Reset drops every memoized item.
func (c *Cache[T]) Reset() {
	c.mut.Lock()
	dropped := len(c.items)
	c.items = make(map[int]T)
	if c.order != nil {
		c.order = queue.New()
	}
	c.mut.Unlock()
	log.Debug().Int("dropped", dropped).Msg("dataset cache reset")
}
