// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/url"

	"github.com/staranto/procurectl/internal/cache"
	"github.com/staranto/procurectl/internal/filters"
)

const poPath = "/Procurement/PurchaseOrder/PurchaseOrders/"

func (c *Client) ListConfirmPOs(ctx context.Context, f filters.Filter, p Page) (ListResult, error) {
	return c.List(ctx, ConfirmPOListing, f, p)
}

// GetPODetails returns the purchase order header and lines.
func (c *Client) GetPODetails(ctx context.Context, poNumber string) ([]byte, error) {
	po, err := requireID("purchase order", poNumber)
	if err != nil {
		return nil, err
	}
	body, err := c.read(ctx, c.procurement, Key("poDetails", po), cache.Short, poPath+url.PathEscape(po))
	return Unwrap(body), err
}

func (c *Client) SubmitConfirmPO(ctx context.Context, poNumber string, d Decision) ([]byte, error) {
	po, err := requireID("purchase order", poNumber)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, c.procurement, ConfirmPOListing.Path+"/"+url.PathEscape(po), d, po,
		ConfirmPOListing.Op)
}
