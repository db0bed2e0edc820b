// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/staranto/procurectl/internal/cache"
)

const masterPath = "/Procurement/Master/"

// Lookup maps a reference code to its display name.
type Lookup map[string]string

// Label returns the name for code and whether it was known.
func (l Lookup) Label(code string) (string, bool) {
	if l == nil {
		return "", false
	}
	name, ok := l[code]
	return name, ok
}

// GetPurchaseTypes returns the purchase type master list. It changes rarely
// and is cached under the long TTL.
func (c *Client) GetPurchaseTypes(ctx context.Context) ([]byte, error) {
	body, err := c.read(ctx, c.procurement, Key("purchaseTypes"), cache.Long, masterPath+"PurchaseTypes")
	return Unwrap(body), err
}

func (c *Client) GetPurchaseSubTypes(ctx context.Context) ([]byte, error) {
	body, err := c.read(ctx, c.procurement, Key("purchaseSubTypes"), cache.Long, masterPath+"PurchaseSubTypes")
	return Unwrap(body), err
}

// PurchaseTypes is GetPurchaseTypes as a Lookup.
func (c *Client) PurchaseTypes(ctx context.Context) (Lookup, error) {
	body, err := c.GetPurchaseTypes(ctx)
	if err != nil {
		return nil, err
	}
	return ParseLookup(body), nil
}

func (c *Client) PurchaseSubTypes(ctx context.Context) (Lookup, error) {
	body, err := c.GetPurchaseSubTypes(ctx)
	if err != nil {
		return nil, err
	}
	return ParseLookup(body), nil
}

// ParseLookup reads [{code, name}] rows. Rows using id/description are
// accepted too.
func ParseLookup(rows []byte) Lookup {
	l := Lookup{}
	gjson.ParseBytes(rows).ForEach(func(_, row gjson.Result) bool {
		code := firstOf(row, "code", "id")
		name := firstOf(row, "name", "description")
		if code != "" {
			l[code] = name
		}
		return true
	})
	return l
}

func firstOf(row gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := row.Get(k); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
