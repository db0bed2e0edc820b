// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// Producer computes the value for a key on a cache miss.
type Producer[V any] func(ctx context.Context) (V, error)

// Provider is the capability every API module depends on. Cache implements it;
// tests may substitute their own.
type Provider[V any] interface {
	GetOrFetch(ctx context.Context, key string, class TTLClass, producer Producer[V]) (V, error)
	Invalidate(key string)
	InvalidateAll()
	InvalidateMatching(substr string) int
}

// Cache is a time-boxed key/value cache with in-flight request coalescing.
type Cache[V any] struct {
	dedup  *Deduplicator[V]
	stores map[TTLClass]Store[V]
	ttls   map[TTLClass]time.Duration
	now    func() time.Time

	janitor bool
}

var _ Provider[[]byte] = (*Cache[[]byte])(nil)

// Option customizes a Cache.
type Option[V any] func(*Cache[V])

// WithClock replaces time.Now, mostly for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

// WithTTL overrides the TTL of a class. Non-positive durations are ignored.
func WithTTL[V any](class TTLClass, ttl time.Duration) Option[V] {
	return func(c *Cache[V]) {
		if ttl > 0 {
			c.ttls[class] = ttl
		}
	}
}

// WithStore sets the Store used for entries of a class. By default each class
// gets its own MemoryStore.
func WithStore[V any](class TTLClass, s Store[V]) Option[V] {
	return func(c *Cache[V]) { c.stores[class] = s }
}

// WithJanitor starts the expired-item janitor of every store that has one.
// Close stops them.
func WithJanitor[V any]() Option[V] {
	return func(c *Cache[V]) { c.janitor = true }
}

// New constructs a Cache.
func New[V any](opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		dedup: NewDeduplicator[V](),
		stores: map[TTLClass]Store[V]{
			Short: NewMemoryStore[V](),
			Long:  NewMemoryStore[V](),
		},
		ttls: map[TTLClass]time.Duration{
			Short: DefaultShortTTL,
			Long:  DefaultLongTTL,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.janitor {
		for _, s := range c.stores {
			if j, ok := s.(interface{ Start() }); ok {
				j.Start()
			}
		}
	}
	return c
}

// TTL returns the effective TTL of a class.
func (c *Cache[V]) TTL(class TTLClass) time.Duration {
	if ttl, ok := c.ttls[class]; ok {
		return ttl
	}
	return c.ttls[Short]
}

// GetOrFetch returns the cached value for key if it is younger than the TTL of
// class. Otherwise it joins an in-flight fetch for key or starts one with
// producer, stores the result and returns it. Errors are returned to every
// waiter and never cached.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, class TTLClass, producer Producer[V]) (V, error) {
	store := c.store(class)
	ttl := c.TTL(class)

	if entry, ok := store.Get(key); ok {
		if entry.Fresh(c.now(), ttl) {
			log.Debugf("cache hit: %s", key)
			return entry.Value, nil
		}
		log.Debugf("cache expired: %s", key)
	}

	return c.dedup.Do(ctx, key, func(ctx context.Context) (V, error) {
		log.Debugf("cache miss: %s", key)
		return producer(ctx)
	}, func(v V) {
		store.Set(key, Entry[V]{Value: v, StoredAt: c.now()}, ttl)
	})
}

// Invalidate removes key from the settled stores and from in-flight tracking.
func (c *Cache[V]) Invalidate(key string) {
	c.dedup.Invalidate(key)
	for _, s := range c.stores {
		s.Delete(key)
	}
	log.Debugf("cache invalidated: %s", key)
}

// InvalidateAll clears every store and forgets all in-flight calls.
func (c *Cache[V]) InvalidateAll() {
	c.dedup.InvalidateAll()
	for _, s := range c.stores {
		s.DeleteAll()
	}
	log.Debug("cache cleared")
}

// InvalidateMatching invalidates every settled or in-flight key containing
// substr and returns how many distinct keys were removed. An empty substr
// matches nothing.
func (c *Cache[V]) InvalidateMatching(substr string) int {
	if substr == "" {
		return 0
	}
	var matched []string
	for _, key := range c.Keys() {
		if strings.Contains(key, substr) {
			matched = append(matched, key)
		}
	}
	for _, key := range matched {
		c.Invalidate(key)
	}
	log.Debugf("cache invalidated %d keys matching %q", len(matched), substr)
	return len(matched)
}

// Keys returns the sorted union of settled and in-flight keys.
func (c *Cache[V]) Keys() []string {
	seen := make(map[string]struct{})
	for _, s := range c.stores {
		for _, key := range s.Keys() {
			seen[key] = struct{}{}
		}
	}
	for _, key := range c.dedup.InFlight() {
		seen[key] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Close releases the stores that hold resources.
func (c *Cache[V]) Close() error {
	var errs []error
	closed := make(map[Store[V]]bool)
	for _, s := range c.stores {
		if closed[s] {
			continue
		}
		closed[s] = true
		if cl, ok := s.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Cache[V]) store(class TTLClass) Store[V] {
	if s, ok := c.stores[class]; ok {
		return s
	}
	return c.stores[Short]
}
