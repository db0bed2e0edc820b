// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"
	"time"
)

// Entry is a settled value and the instant it was stored.
type Entry[V any] struct {
	Value    V         `json:"value"`
	StoredAt time.Time `json:"storedAt"`
}

// Fresh reports whether the entry is still valid for reads at now.
func (e Entry[V]) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) < ttl
}

// TTLClass selects how long an entry stays valid.
type TTLClass int

const (
	// Short is for transactional reads such as lists and PR details.
	Short TTLClass = iota
	// Long is for slow-changing reference and master data.
	Long
)

const (
	DefaultShortTTL = 5 * time.Minute
	DefaultLongTTL  = 30 * time.Minute
)

func (c TTLClass) String() string {
	switch c {
	case Short:
		return "short"
	case Long:
		return "long"
	default:
		return fmt.Sprintf("TTLClass(%d)", int(c))
	}
}
