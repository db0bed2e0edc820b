// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package driller

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var escaper = strings.NewReplacer(
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`!`, `\!`,
)

// Driller resolves path against json. Segments are separated by dots and may
// carry an index, as in lines[1].qty. A single element array is drilled
// through transparently, so approvers.name works when there is only one
// approver. A multi element array is returned as is unless indexed.
func Driller(json string, path string) gjson.Result {
	cur := gjson.Parse(json)

	for _, seg := range strings.Split(path, ".") {
		name, idx, ok := splitIndex(seg)
		if !ok {
			return gjson.Result{}
		}

		if name != "" {
			if cur.IsArray() {
				arr := cur.Array()
				if len(arr) != 1 {
					return gjson.Result{}
				}
				cur = arr[0]
			}
			cur = cur.Get(escaper.Replace(name))
		}

		for _, i := range idx {
			if !cur.IsArray() {
				return gjson.Result{}
			}
			arr := cur.Array()
			if i < 0 || i >= len(arr) {
				return gjson.Result{}
			}
			cur = arr[i]
		}

		if !cur.Exists() {
			return gjson.Result{}
		}
	}

	if cur.IsArray() {
		if arr := cur.Array(); len(arr) == 1 {
			return arr[0]
		}
	}

	return cur
}

// splitIndex separates "tags[0][1]" into "tags" and [0 1].
func splitIndex(seg string) (string, []int, bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, nil, true
	}

	name := seg[:open]
	var idx []int
	rest := seg[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		idx = append(idx, n)
		rest = rest[end+1:]
	}
	return name, idx, true
}
