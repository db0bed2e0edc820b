// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"context"

	"github.com/apex/log"

	"github.com/staranto/procurectl/internal/api"
)

// EmployeeResolver looks up a batch of employee ids.
type EmployeeResolver interface {
	GetEmployees(ctx context.Context, ids []string) (map[string]api.Employee, error)
}

// EmployeeIDs collects the distinct ids held in keys across rows.
func EmployeeIDs(rows []map[string]interface{}, keys []string) []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, row := range rows {
		for _, k := range keys {
			id, ok := row[k].(string)
			if !ok || id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// PatchEmployees replaces each id in keys with the employee's name. Ids that
// did not resolve keep the raw id.
func PatchEmployees(rows []map[string]interface{}, keys []string, employees map[string]api.Employee) {
	for _, row := range rows {
		for _, k := range keys {
			id, ok := row[k].(string)
			if !ok {
				continue
			}
			if e, found := employees[id]; found && e.Name != "" {
				row[k] = e.Name
			}
		}
	}
}

// EnrichEmployees resolves every employee id in rows with a single batched
// lookup and patches the names in place. A failed lookup leaves the ids.
func EnrichEmployees(ctx context.Context, r EmployeeResolver, rows []map[string]interface{}, keys []string) {
	ids := EmployeeIDs(rows, keys)
	if len(ids) == 0 {
		return
	}

	employees, err := r.GetEmployees(ctx, ids)
	if err != nil {
		log.WithError(err).Warn("employee lookup failed")
		return
	}
	PatchEmployees(rows, keys, employees)
}
