// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"sync"
	"time"
)

// DefaultDebounce is the search delay used when config has none.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer calls fn once, delay after the last Trigger, with the most recent
// value. Triggers that arrive inside the window restart it.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending T
	armed   bool
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger records v and restarts the delay.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = v
	d.armed = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush runs a pending call now instead of waiting. It reports whether
// anything was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.armed {
		d.mu.Unlock()
		return false
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Stop drops a pending call. It reports whether anything was pending.
func (d *Debouncer[T]) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.armed {
		return false
	}
	d.take()
	return true
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// A later Trigger, Flush or Stop superseded this timer.
	if gen != d.gen || !d.armed {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
}

// take must be called with mu held.
func (d *Debouncer[T]) take() T {
	v := d.pending
	var zero T
	d.pending = zero
	d.armed = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v
}
