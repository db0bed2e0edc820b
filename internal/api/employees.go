// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/staranto/procurectl/internal/cache"
)

// Employee is the subset of the identity record shown in grids.
type Employee struct {
	ID    string
	Name  string
	Email string
}

// GetEmployees resolves ids in one batched call. The cache key is built from
// the sorted, de-duplicated ids so any ordering of the same set is a hit.
// Unknown ids are simply absent from the result.
func (c *Client) GetEmployees(ctx context.Context, ids []string) (map[string]Employee, error) {
	set := normalizeIDs(ids)
	if len(set) == 0 {
		return map[string]Employee{}, nil
	}

	joined := strings.Join(set, ",")
	path := withQuery("/Identity/Employees", url.Values{"ids": {joined}}.Encode())

	body, err := c.read(ctx, c.identity, Key("employees", joined), cache.Long, path)
	if err != nil {
		return nil, err
	}

	result := make(map[string]Employee, len(set))
	gjson.ParseBytes(Unwrap(body)).ForEach(func(_, row gjson.Result) bool {
		e := Employee{
			ID:    firstOf(row, "id", "employeeId"),
			Name:  firstOf(row, "name", "fullName"),
			Email: row.Get("email").String(),
		}
		if e.ID != "" {
			result[e.ID] = e
		}
		return true
	})
	return result, nil
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var set []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		set = append(set, id)
	}
	sort.Strings(set)
	return set
}
