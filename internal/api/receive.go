// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/url"

	"github.com/staranto/procurectl/internal/filters"
)

// ReceiptLine is the quantity received for one PO line.
type ReceiptLine struct {
	ItemCode string  `json:"itemCode"`
	Qty      float64 `json:"qty"`
}

// Receipt is the body of a goods receive submission.
type Receipt struct {
	ReceiveDate  string        `json:"receiveDate"`
	DeliveryNote string        `json:"deliveryNote,omitempty"`
	Remarks      string        `json:"remarks,omitempty"`
	Lines        []ReceiptLine `json:"lines"`
}

func (c *Client) ListReceives(ctx context.Context, f filters.Filter, p Page) (ListResult, error) {
	return c.List(ctx, ReceiveListing, f, p)
}

func (c *Client) SubmitReceive(ctx context.Context, poNumber string, r Receipt) ([]byte, error) {
	po, err := requireID("purchase order", poNumber)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, c.procurement, ReceiveListing.Path+"/"+url.PathEscape(po), r, po,
		ReceiveListing.Op)
}
