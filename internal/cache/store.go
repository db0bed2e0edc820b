// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Store holds settled entries. Freshness is decided by the Cache, not the
// Store; ttl is only a hint that lets an implementation reclaim space.
type Store[V any] interface {
	Get(key string) (Entry[V], bool)
	Set(key string, entry Entry[V], ttl time.Duration)
	Delete(key string)
	DeleteAll()
	Keys() []string
}

// MemoryStore is a Store backed by ttlcache. Items are dropped by ttlcache
// once their wall-clock TTL passes, either lazily on Get or by the janitor
// started with Start.
type MemoryStore[V any] struct {
	items   *ttlcache.Cache[string, Entry[V]]
	mu      sync.Mutex
	running bool
}

// NewMemoryStore returns an empty MemoryStore. The janitor is not running.
func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{
		items: ttlcache.New(
			ttlcache.WithDisableTouchOnHit[string, Entry[V]](),
		),
	}
}

// Start runs the expired-item janitor in the background until Close.
func (s *MemoryStore[V]) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.items.Start()
}

// Close stops the janitor. It is safe to call even if Start was not.
func (s *MemoryStore[V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// ttlcache.Stop blocks unless the janitor loop is receiving.
	if s.running {
		s.items.Stop()
		s.running = false
	}
	return nil
}

func (s *MemoryStore[V]) Get(key string) (Entry[V], bool) {
	item := s.items.Get(key)
	if item == nil {
		return Entry[V]{}, false
	}
	return item.Value(), true
}

func (s *MemoryStore[V]) Set(key string, entry Entry[V], ttl time.Duration) {
	s.items.Set(key, entry, ttl)
}

func (s *MemoryStore[V]) Delete(key string) {
	s.items.Delete(key)
}

func (s *MemoryStore[V]) DeleteAll() {
	s.items.DeleteAll()
}

func (s *MemoryStore[V]) Keys() []string {
	return s.items.Keys()
}
