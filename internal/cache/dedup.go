// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Deduplicator coalesces concurrent calls that share a key so that at most one
// call per key is running at any instant. It knows nothing about caching; the
// commit hook passed to Do lets the caller store a result atomically with
// respect to Invalidate.
type Deduplicator[V any] struct {
	group singleflight.Group

	mu       sync.Mutex
	epoch    uint64
	versions map[string]uint64
	inflight map[string]int

	// onStart, when set, runs at the start of a new call before it registers.
	onStart func(key string)
}

// stamp identifies the invalidation state a call started under.
type stamp struct {
	epoch   uint64
	version uint64
}

type outcome[V any] struct {
	value V
}

// NewDeduplicator returns a ready to use Deduplicator.
func NewDeduplicator[V any]() *Deduplicator[V] {
	return &Deduplicator[V]{
		versions: make(map[string]uint64),
		inflight: make(map[string]int),
	}
}

// Do runs fn for key unless a call for key is already in flight, in which case
// it waits for that call and returns its result. fn runs detached from the
// cancellation of ctx and always runs to completion; a caller whose ctx is
// done stops waiting and gets ctx.Err(). When fn succeeds and key has not been
// invalidated since the call started running, commit (if non-nil) is invoked
// once with the value.
func (d *Deduplicator[V]) Do(
	ctx context.Context,
	key string,
	fn func(context.Context) (V, error),
	commit func(V),
) (V, error) {
	detached := context.WithoutCancel(ctx)

	ch := d.group.DoChan(key, func() (any, error) {
		if d.onStart != nil {
			d.onStart(key)
		}
		st := d.enter(key)
		v, err := fn(detached)
		d.leave(key, st, v, err, commit)
		return outcome[V]{value: v}, err
	})

	select {
	case res := <-ch:
		out, _ := res.Val.(outcome[V])
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return out.value, nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Invalidate forgets any in-flight call for key. Callers arriving later start
// a fresh call; a call already running finishes but its result is not
// committed.
func (d *Deduplicator[V]) Invalidate(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.versions[key]++
	d.group.Forget(key)
}

// InvalidateAll forgets every in-flight call. It does not stop them.
func (d *Deduplicator[V]) InvalidateAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.epoch++
	d.versions = make(map[string]uint64)
	for key := range d.inflight {
		d.group.Forget(key)
	}
}

// InFlight returns the sorted keys that currently have a running call.
func (d *Deduplicator[V]) InFlight() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	keys := make([]string, 0, len(d.inflight))
	for key := range d.inflight {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// enter registers a running call for key and returns the invalidation state
// it runs under. Both happen under one lock so an Invalidate is either seen by
// the stamp or finds the key in flight.
func (d *Deduplicator[V]) enter(key string) stamp {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inflight[key]++
	return stamp{epoch: d.epoch, version: d.versions[key]}
}

// leave runs commit under the lock so that an Invalidate racing with the end
// of a call either happens before the commit (and suppresses it) or after it
// (and removes what was committed).
func (d *Deduplicator[V]) leave(key string, st stamp, v V, err error, commit func(V)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inflight[key]--; d.inflight[key] <= 0 {
		delete(d.inflight, key)
	}

	if err != nil || commit == nil {
		return
	}
	if st.epoch != d.epoch || st.version != d.versions[key] {
		return
	}
	commit(v)
}
