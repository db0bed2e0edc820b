// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/url"

	"github.com/staranto/procurectl/internal/cache"
	"github.com/staranto/procurectl/internal/filters"
)

const prPath = "/Procurement/PurchaseRequest/PurchaseRequests/"

func (c *Client) ListPurchaseRequests(ctx context.Context, f filters.Filter, p Page) (ListResult, error) {
	return c.List(ctx, PurchaseRequestListing, f, p)
}

// GetPRDetails returns the purchase request header.
func (c *Client) GetPRDetails(ctx context.Context, prID string) ([]byte, error) {
	id, err := requireID("purchase request", prID)
	if err != nil {
		return nil, err
	}
	body, err := c.read(ctx, c.procurement, Key("prDetails", id), cache.Short, prPath+url.PathEscape(id))
	return Unwrap(body), err
}

// GetPRAdditionalData returns nil, nil when the request has no additional data.
func (c *Client) GetPRAdditionalData(ctx context.Context, prID string) ([]byte, error) {
	id, err := requireID("purchase request", prID)
	if err != nil {
		return nil, err
	}
	body, err := c.readOptional(ctx, c.procurement, Key("prAdditionalData", id), cache.Short, prPath+url.PathEscape(id)+"/AdditionalData")
	return Unwrap(body), err
}

func (c *Client) GetPRItems(ctx context.Context, prID string) ([]byte, error) {
	id, err := requireID("purchase request", prID)
	if err != nil {
		return nil, err
	}
	body, err := c.read(ctx, c.procurement, Key("prItems", id), cache.Short, prPath+url.PathEscape(id)+"/Items")
	return Unwrap(body), err
}
