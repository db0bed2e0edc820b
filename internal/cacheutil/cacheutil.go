// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apex/log"

	"github.com/staranto/procurectl/internal/cache"
)

// record is the on-disk form of a cache entry. Key is kept in clear text so
// that keys can be listed and matched; the filename is the hashed key.
type record[V any] struct {
	Key      string    `json:"key"`
	Value    V         `json:"value"`
	StoredAt time.Time `json:"storedAt"`
	// ExpiresAt is wall-clock write time plus the ttl hint. Zero never expires.
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func (r record[V]) expired(at time.Time) bool {
	return !r.ExpiresAt.IsZero() && !at.Before(r.ExpiresAt)
}

// now is swapped in tests.
var now = time.Now

// Dir resolves the base cache directory.
// Precedence:
//  1. PROCURECTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/procurectl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("PROCURECTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "procurectl"), true
	}
	return "", false
}

// Enabled returns true unless PROCURECTL_CACHE explicitly disables it
// ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("PROCURECTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// Purge removes files older than the provided number of hours.
// If hours <= 0 or the cache dir cannot be resolved, it is a no-op. It returns
// the number of files removed.
func Purge(hours int) (int, error) {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return 0, nil
	}
	base, ok := Dir()
	if !ok {
		return 0, nil
	}
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return 0, nil
	}
	maxAge := time.Duration(hours) * time.Hour
	removed := 0
	if err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				removed++
				log.Debugf("removed cache file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	}); err != nil {
		return removed, fmt.Errorf("failed to purge cache: %w", err)
	}
	return removed, nil
}

// DiskStore is a cache.Store that keeps JSON encoded entries beneath
// Dir()/subdirs. It lets long-lived reference data outlive a single process.
// Read and write failures are logged and treated as misses.
type DiskStore[V any] struct {
	subdirs []string
}

var _ cache.Store[[]byte] = (*DiskStore[[]byte])(nil)

// NewDiskStore returns a DiskStore rooted at the given subdirectories, for
// example the API host, so that different servers never share entries.
func NewDiskStore[V any](subdirs ...string) *DiskStore[V] {
	return &DiskStore[V]{subdirs: subdirs}
}

func (s *DiskStore[V]) dir() (string, bool) {
	if !Enabled() {
		return "", false
	}
	base, ok := Dir()
	if !ok {
		return "", false
	}
	return filepath.Join(append([]string{base}, s.subdirs...)...), true
}

// EntryPath returns the absolute path where the entry for clearKey would live
// and whether a file currently exists there.
func (s *DiskStore[V]) EntryPath(clearKey string) (string, bool) {
	dir, ok := s.dir()
	if !ok {
		return "", false
	}
	p := filepath.Join(dir, encodeKey(clearKey))
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return p, false
}

func (s *DiskStore[V]) Get(key string) (cache.Entry[V], bool) {
	p, ok := s.EntryPath(key)
	if !ok {
		return cache.Entry[V]{}, false
	}
	rec, err := readRecord[V](p)
	if err != nil {
		log.WithError(err).Warnf("failed to read cache file %s", p)
		return cache.Entry[V]{}, false
	}
	if rec.Key != key {
		return cache.Entry[V]{}, false
	}
	if rec.expired(now()) {
		removeFile(p)
		return cache.Entry[V]{}, false
	}
	log.Debugf("disk cache hit: %s", p)
	return cache.Entry[V]{Value: rec.Value, StoredAt: rec.StoredAt}, true
}

func (s *DiskStore[V]) Set(key string, entry cache.Entry[V], ttl time.Duration) {
	dir, ok := s.dir()
	if !ok {
		return // treat as disabled.
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		log.WithError(err).Warn("failed to create cache directory")
		return
	}
	rec := record[V]{Key: key, Value: entry.Value, StoredAt: entry.StoredAt}
	if ttl > 0 {
		rec.ExpiresAt = now().Add(ttl)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		log.WithError(err).Warnf("failed to encode cache entry %s", key)
		return
	}
	p := filepath.Join(dir, encodeKey(key))
	if err := os.WriteFile(p, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		log.WithError(err).Warn("failed to write to cache")
	}
}

func (s *DiskStore[V]) Delete(key string) {
	if p, ok := s.EntryPath(key); ok {
		removeFile(p)
	}
}

func removeFile(p string) {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warnf("failed to remove cache file %s", p)
	}
}

func (s *DiskStore[V]) DeleteAll() {
	dir, ok := s.dir()
	if !ok {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", e.Name())
		}
	}
}

// Keys lists the clear-text keys of every readable entry. Expired files found
// on the way are removed.
func (s *DiskStore[V]) Keys() []string {
	dir, ok := s.dir()
	if !ok {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var keys []string
	at := now()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		rec, err := readRecord[V](p)
		if err != nil {
			continue
		}
		if rec.expired(at) {
			removeFile(p)
			continue
		}
		keys = append(keys, rec.Key)
	}
	sort.Strings(keys)
	return keys
}

func readRecord[V any](path string) (record[V], error) {
	var rec record[V]
	b, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode cache file: %w", err)
	}
	return rec, nil
}

// encodeKey hashes k with MD5 and returns the hex string.
func encodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}
