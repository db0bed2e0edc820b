// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"github.com/apex/log"

	"github.com/staranto/procurectl/internal/api"
)

// Reference names a master data list a derived column is resolved against.
type Reference int

const (
	PurchaseTypes Reference = iota
	PurchaseSubTypes
)

func (r Reference) String() string {
	switch r {
	case PurchaseTypes:
		return "purchaseTypes"
	case PurchaseSubTypes:
		return "purchaseSubTypes"
	default:
		return "unknown"
	}
}

// Derived replaces the code held in Key with its label from Ref.
type Derived struct {
	Key string
	Ref Reference
}

// Label renders code with lookup. A lookup that has not loaded yet shows the
// raw code and logs a warning; an unknown code also shows as is.
func Label(ref Reference, code string, lookup api.Lookup) string {
	if code == "" {
		return ""
	}
	if lookup == nil {
		log.WithFields(log.Fields{"ref": ref.String(), "code": code}).Warn("reference data not loaded")
		return code
	}
	if name, ok := lookup.Label(code); ok && name != "" {
		return name
	}
	log.WithFields(log.Fields{"ref": ref.String(), "code": code}).Debug("unknown reference code")
	return code
}

// PurchaseTypeLabel is Label for the purchase type column.
func PurchaseTypeLabel(code string, lookup api.Lookup) string {
	return Label(PurchaseTypes, code, lookup)
}

// PurchaseSubTypeLabel is Label for the purchase sub type column.
func PurchaseSubTypeLabel(code string, lookup api.Lookup) string {
	return Label(PurchaseSubTypes, code, lookup)
}

// applyDerived patches every derived column in rows. Lookups missing from
// lookups count as not loaded.
func applyDerived(rows []map[string]interface{}, derived []Derived, lookups map[Reference]api.Lookup) {
	for _, d := range derived {
		lookup := lookups[d.Ref]
		for _, row := range rows {
			code, ok := row[d.Key].(string)
			if !ok {
				continue
			}
			row[d.Key] = Label(d.Ref, code, lookup)
		}
	}
}
