// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/url"

	"github.com/staranto/procurectl/internal/filters"
)

func (c *Client) ListReleases(ctx context.Context, f filters.Filter, p Page) (ListResult, error) {
	return c.List(ctx, ReleaseListing, f, p)
}

func (c *Client) SubmitRelease(ctx context.Context, poNumber string, d Decision) ([]byte, error) {
	po, err := requireID("purchase order", poNumber)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, c.procurement, ReleaseListing.Path+"/"+url.PathEscape(po), d, po,
		ReleaseListing.Op)
}
