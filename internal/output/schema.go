// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/tidwall/gjson"
)

const maxSchemaDepth = 2

// Schema lists the attr keys available in a sample row, as dotted paths
// usable with --attrs. Arrays are described by their first element.
func Schema(row gjson.Result) []string {
	var keys []string
	schemaWalker("", row, 0, &keys)
	sort.Strings(keys)
	return keys
}

func schemaWalker(holder string, v gjson.Result, depth int, keys *[]string) {
	if v.IsArray() {
		arr := v.Array()
		if len(arr) == 0 {
			return
		}
		v = arr[0]
	}
	if !v.IsObject() {
		return
	}

	v.ForEach(func(k, val gjson.Result) bool {
		name := k.String()
		if holder != "" {
			name = holder + "." + name
		}
		*keys = append(*keys, name)
		if depth < maxSchemaDepth && (val.IsObject() || val.IsArray()) {
			schemaWalker(name, val, depth+1, keys)
		}
		return true
	})
}

// DumpSchema prints the keys of the first row of dataset.
func DumpSchema(w io.Writer, dataset gjson.Result) {
	sample := dataset
	if dataset.IsArray() {
		arr := dataset.Array()
		if len(arr) == 0 {
			fmt.Fprintln(w, "no rows to derive a schema from")
			return
		}
		sample = arr[0]
	}

	for _, k := range Schema(sample) {
		fmt.Fprintln(w, k)
	}
}
