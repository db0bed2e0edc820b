// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"net/url"
	"sort"
	"strings"
)

// Form holds field values exactly as the user entered them, keyed by the
// server's query parameter name.
type Form map[string]string

// Filter is the server-side query built from a Form. It only carries fields
// that constrain the search.
type Filter map[string]string

// Filter trims every field and drops the empty ones.
func (f Form) Filter() Filter {
	result := Filter{}
	for k, v := range f {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		result[k] = v
	}
	return result
}

// Set adds or replaces k. A blank value removes it.
func (f Filter) Set(k, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		delete(f, k)
		return
	}
	f[k] = v
}

// Keys returns the field names in sorted order.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values converts f to url.Values.
func (f Filter) Values() url.Values {
	v := url.Values{}
	for k, val := range f {
		v.Set(k, val)
	}
	return v
}

// Encode renders f as a query string with keys in sorted order, so two equal
// filters always produce the same string.
func (f Filter) Encode() string {
	return f.Values().Encode()
}
