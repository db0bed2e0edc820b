// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"strings"

	"github.com/staranto/procurectl/internal/filters"
)

// KeywordField receives the words of a query that are not key=value pairs.
const KeywordField = "keyword"

// ParseQuery turns "status=OPEN requester=E1 laptop bag" into a form. Later
// pairs win over earlier ones for the same key.
func ParseQuery(q string) filters.Form {
	form := filters.Form{}
	var words []string
	for _, tok := range strings.Fields(q) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok || k == "" {
			words = append(words, tok)
			continue
		}
		form[k] = v
	}
	if len(words) > 0 {
		form[KeywordField] = strings.Join(words, " ")
	}
	return form
}

// Runner executes one search and returns the rendered results.
type Runner func(f filters.Filter) (string, error)
