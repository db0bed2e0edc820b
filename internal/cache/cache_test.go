// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// countingProducer returns a producer that yields value and counts its calls.
func countingProducer(calls *int32, value string) Producer[string] {
	return func(context.Context) (string, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func newTestCache(clock *fakeClock) *Cache[string] {
	return New(WithClock[string](clock.Now))
}

func TestGetOrFetch_CachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := newTestCache(clock)

	var calls int32
	v, err := c.GetOrFetch(ctx, "prDetails_PR001", Short, countingProducer(&calls, "V1"))
	require.NoError(t, err)
	assert.Equal(t, "V1", v)

	clock.Advance(time.Minute)
	v, err = c.GetOrFetch(ctx, "prDetails_PR001", Short, countingProducer(&calls, "V2"))
	require.NoError(t, err)
	assert.Equal(t, "V1", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrFetch_TTLBoundary(t *testing.T) {
	ctx := context.Background()
	const eps = time.Millisecond

	tests := []struct {
		name      string
		class     TTLClass
		advance   time.Duration
		wantCalls int32
	}{
		{name: "short just before expiry", class: Short, advance: DefaultShortTTL - eps, wantCalls: 1},
		{name: "short exactly at expiry", class: Short, advance: DefaultShortTTL, wantCalls: 2},
		{name: "short after expiry", class: Short, advance: DefaultShortTTL + eps, wantCalls: 2},
		{name: "long survives short ttl", class: Long, advance: DefaultShortTTL + eps, wantCalls: 1},
		{name: "long just before expiry", class: Long, advance: DefaultLongTTL - eps, wantCalls: 1},
		{name: "long after expiry", class: Long, advance: DefaultLongTTL + eps, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			c := newTestCache(clock)

			var calls int32
			_, err := c.GetOrFetch(ctx, "k", tt.class, countingProducer(&calls, "a"))
			require.NoError(t, err)

			clock.Advance(tt.advance)
			_, err = c.GetOrFetch(ctx, "k", tt.class, countingProducer(&calls, "b"))
			require.NoError(t, err)

			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestGetOrFetch_CustomTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := New(WithClock[string](clock.Now), WithTTL[string](Short, time.Second))
	assert.Equal(t, time.Second, c.TTL(Short))
	assert.Equal(t, DefaultLongTTL, c.TTL(Long))

	var calls int32
	_, _ = c.GetOrFetch(ctx, "k", Short, countingProducer(&calls, "a"))
	clock.Advance(2 * time.Second)
	_, _ = c.GetOrFetch(ctx, "k", Short, countingProducer(&calls, "a"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetOrFetch_CoalescesConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(newFakeClock())

	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})
	producer := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return "types", nil
	}

	const callers = 8
	results := make([]string, callers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.GetOrFetch(ctx, "purchaseTypes", Long, producer)
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.GetOrFetch(ctx, "purchaseTypes", Long, producer)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "types", r)
	}
}

func TestGetOrFetch_ErrorPropagatesToAllWaitersAndIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(newFakeClock())
	boom := errors.New("boom")

	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})
	failing := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return "", boom
	}

	errs := make([]error, 3)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = c.GetOrFetch(ctx, "k", Short, failing)
	}()
	<-started
	for i := 1; i < len(errs); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetOrFetch(ctx, "k", Short, failing)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Nothing was stored, so the next access retries.
	var retries int32
	v, err := c.GetOrFetch(ctx, "k", Short, countingProducer(&retries, "ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(1), retries)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := newTestCache(clock)

	var calls int32
	_, _ = c.GetOrFetch(ctx, "prDetails_PR001", Short, countingProducer(&calls, "V1"))
	clock.Advance(time.Minute)
	_, _ = c.GetOrFetch(ctx, "prDetails_PR001", Short, countingProducer(&calls, "V1"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	c.Invalidate("prDetails_PR001")
	clock.Advance(time.Minute)
	v, err := c.GetOrFetch(ctx, "prDetails_PR001", Short, countingProducer(&calls, "V2"))
	require.NoError(t, err)
	assert.Equal(t, "V2", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInvalidate_UnknownKeyIsNoop(t *testing.T) {
	c := newTestCache(newFakeClock())
	assert.NotPanics(t, func() { c.Invalidate("missing") })
	assert.Empty(t, c.Keys())
}

func TestInvalidate_DuringFlightStartsNewCallAndDropsOldResult(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(newFakeClock())

	release := make(chan struct{})
	started := make(chan struct{})
	slow := func(context.Context) (string, error) {
		close(started)
		<-release
		return "stale", nil
	}

	var wg sync.WaitGroup
	var first string
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, _ = c.GetOrFetch(ctx, "k", Short, slow)
	}()
	<-started

	c.Invalidate("k")

	var calls int32
	v, err := c.GetOrFetch(ctx, "k", Short, countingProducer(&calls, "fresh"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.Equal(t, int32(1), calls)

	close(release)
	wg.Wait()
	assert.Equal(t, "stale", first, "the forgotten call still completes for its waiters")

	v, err = c.GetOrFetch(ctx, "k", Short, countingProducer(&calls, "other"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", v, "the forgotten call must not overwrite the newer value")
}

func TestInvalidateAll(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(newFakeClock())

	var calls int32
	for _, key := range []string{"a", "b", "c"} {
		_, _ = c.GetOrFetch(ctx, key, Long, countingProducer(&calls, key))
	}
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())

	c.InvalidateAll()
	assert.Empty(t, c.Keys())

	_, _ = c.GetOrFetch(ctx, "a", Long, countingProducer(&calls, "a"))
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestInvalidateMatching(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(newFakeClock())

	var calls int32
	for _, key := range []string{"prDetails_PR001", "prItems_PR001", "prDetails_PR002", "purchaseTypes"} {
		_, _ = c.GetOrFetch(ctx, key, Short, countingProducer(&calls, key))
	}

	assert.Equal(t, 2, c.InvalidateMatching("PR001"))
	assert.Equal(t, []string{"prDetails_PR002", "purchaseTypes"}, c.Keys())
	assert.Equal(t, 0, c.InvalidateMatching(""))
	assert.Equal(t, 0, c.InvalidateMatching("PR999"))
}

func TestGetOrFetch_WaiterCancellationDoesNotCancelProducer(t *testing.T) {
	c := newTestCache(newFakeClock())

	release := make(chan struct{})
	producerErr := make(chan error, 1)
	producer := func(ctx context.Context) (string, error) {
		<-release
		producerErr <- ctx.Err()
		return "done", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.GetOrFetch(ctx, "k", Short, producer)
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	assert.NoError(t, <-producerErr, "producer context must not be cancelled")

	// The detached call still settles into the cache.
	assert.Eventually(t, func() bool {
		var calls int32
		v, err := c.GetOrFetch(context.Background(), "k", Short, countingProducer(&calls, "again"))
		return err == nil && v == "done" && calls == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCache_Close(t *testing.T) {
	mem := NewMemoryStore[string]()
	mem.Start()
	c := New(WithStore[string](Short, mem), WithStore[string](Long, mem))
	assert.NoError(t, c.Close())
	assert.NoError(t, mem.Close())
}

func TestCache_WithJanitor(t *testing.T) {
	running := func(c *Cache[string], class TTLClass) bool {
		m := c.stores[class].(*MemoryStore[string])
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.running
	}

	plain := New[string]()
	assert.False(t, running(plain, Short))
	assert.NoError(t, plain.Close())

	c := New(WithJanitor[string]())
	assert.True(t, running(c, Short))
	assert.True(t, running(c, Long))
	assert.NoError(t, c.Close())
	assert.False(t, running(c, Short))
	assert.False(t, running(c, Long))
}

func TestTTLClass_String(t *testing.T) {
	assert.Equal(t, "short", Short.String())
	assert.Equal(t, "long", Long.String())
	assert.Equal(t, "TTLClass(7)", TTLClass(7).String())
}
