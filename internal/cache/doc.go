// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the request-deduplicating cache that sits in front of
// every procurement API read. Entries are time-boxed in one of two TTL classes,
// concurrent fetches for the same key are coalesced into a single producer
// call, and mutations invalidate entries by key or by identifier substring.
package cache
