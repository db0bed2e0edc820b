// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/staranto/procurectl/internal/filters"
)

// Unwrap returns the payload of a {data: ...} envelope, or body itself when
// the server answered with a bare array or object.
func Unwrap(body []byte) []byte {
	if len(body) == 0 {
		return nil
	}
	doc := gjson.ParseBytes(body)
	if doc.IsObject() {
		if data := doc.Get("data"); data.Exists() {
			return []byte(data.Raw)
		}
	}
	return body
}

// Page asks the server for one page of a listing. The zero Page lets the
// server pick.
type Page struct {
	Number int
	Size   int
}

// Next returns the following page.
func (p Page) Next() Page {
	return Page{Number: p.Number + 1, Size: p.Size}
}

// ListResult is one page of rows and the paging contract around it.
type ListResult struct {
	Rows       []byte
	Page       Page
	TotalCount int
}

// HasMore reports whether pages remain after this one.
func (r ListResult) HasMore() bool {
	if r.Page.Size <= 0 || r.Page.Number <= 0 {
		return false
	}
	return r.Page.Number*r.Page.Size < r.TotalCount
}

// Len is the number of rows on this page.
func (r ListResult) Len() int {
	return int(gjson.ParseBytes(r.Rows).Get("#").Int())
}

// parseList reads rows and totals from an envelope. A bare array is its own
// total. Server supplied page numbers win over the requested ones.
func parseList(body []byte, requested Page) ListResult {
	result := ListResult{Rows: Unwrap(body), Page: requested}
	if rows := gjson.ParseBytes(result.Rows); !rows.IsArray() {
		result.Rows = []byte("[]")
	}

	doc := gjson.ParseBytes(body)
	if v := doc.Get("totalCount"); v.Exists() {
		result.TotalCount = int(v.Int())
	} else {
		result.TotalCount = result.Len()
	}
	if v := doc.Get("page"); v.Exists() && v.Int() > 0 {
		result.Page.Number = int(v.Int())
	}
	if v := doc.Get("pageSize"); v.Exists() && v.Int() > 0 {
		result.Page.Size = int(v.Int())
	}
	return result
}

// listQuery merges the filter and page into a sorted query string.
func listQuery(f filters.Filter, p Page) string {
	v := url.Values{}
	for k, val := range f {
		v.Set(k, val)
	}
	if p.Number > 0 {
		v.Set("page", strconv.Itoa(p.Number))
	}
	if p.Size > 0 {
		v.Set("pageSize", strconv.Itoa(p.Size))
	}
	return v.Encode()
}

// withQuery appends q to path when it is not empty.
func withQuery(path, q string) string {
	if q == "" {
		return path
	}
	return path + "?" + q
}
