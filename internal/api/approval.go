// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/url"

	"github.com/staranto/procurectl/internal/cache"
	"github.com/staranto/procurectl/internal/filters"
)

const approvalPath = "/Procurement/PurchaseRequest/Approvals/"

func (c *Client) ListApprovals(ctx context.Context, f filters.Filter, p Page) (ListResult, error) {
	return c.List(ctx, ApprovalListing, f, p)
}

// GetApprovalHistory returns the approval steps taken on a purchase request.
func (c *Client) GetApprovalHistory(ctx context.Context, prID string) ([]byte, error) {
	id, err := requireID("approval", prID)
	if err != nil {
		return nil, err
	}
	body, err := c.read(ctx, c.procurement, Key("approvalHistory", id), cache.Short, approvalPath+url.PathEscape(id)+"/History")
	return Unwrap(body), err
}

// SubmitApproval records d against the purchase request.
func (c *Client) SubmitApproval(ctx context.Context, prID string, d Decision) ([]byte, error) {
	id, err := requireID("approval", prID)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, c.procurement, approvalPath+url.PathEscape(id), d, id,
		ApprovalListing.Op, PurchaseRequestListing.Op)
}
