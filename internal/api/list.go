// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/staranto/procurectl/internal/cache"
	"github.com/staranto/procurectl/internal/filters"
)

// Listing names the cache prefix and path of a server paginated grid.
type Listing struct {
	Op   string
	Path string
}

var (
	PurchaseRequestListing = Listing{Op: "purchaseRequests", Path: "/Procurement/PurchaseRequest/PurchaseRequests"}
	ApprovalListing        = Listing{Op: "approvals", Path: "/Procurement/PurchaseRequest/Approvals"}
	CancelPeriodListing    = Listing{Op: "cancelPeriods", Path: "/Procurement/PurchaseRequest/CancelPeriods"}
	ConfirmPOListing       = Listing{Op: "confirmPOs", Path: "/Procurement/PurchaseOrder/ConfirmPOs"}
	ReceiveListing         = Listing{Op: "receives", Path: "/Procurement/PurchaseOrder/Receives"}
	ReleaseListing         = Listing{Op: "releases", Path: "/Procurement/PurchaseOrder/Releases"}
)

// List fetches one page of l. The cache key always carries the encoded query
// so a listing's keys share the Op_ prefix.
func (c *Client) List(ctx context.Context, l Listing, f filters.Filter, p Page) (ListResult, error) {
	q := listQuery(f, p)
	body, err := c.read(ctx, c.procurement, Key(l.Op, q), cache.Short, withQuery(l.Path, q))
	if err != nil {
		return ListResult{}, err
	}
	return parseList(body, p), nil
}
