// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/url"

	"github.com/staranto/procurectl/internal/filters"
)

func (c *Client) ListCancelPeriods(ctx context.Context, f filters.Filter, p Page) (ListResult, error) {
	return c.List(ctx, CancelPeriodListing, f, p)
}

func (c *Client) SubmitCancelPeriod(ctx context.Context, prID string, d Decision) ([]byte, error) {
	id, err := requireID("cancel period", prID)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, c.procurement, CancelPeriodListing.Path+"/"+url.PathEscape(id), d, id,
		CancelPeriodListing.Op, PurchaseRequestListing.Op)
}
