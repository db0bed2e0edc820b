// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/procurectl/internal/api"
	"github.com/staranto/procurectl/internal/attrs"
	"github.com/staranto/procurectl/internal/filters"
	"github.com/staranto/procurectl/internal/output"
)

// Source is everything a grid reads. *api.Client satisfies it.
type Source interface {
	EmployeeResolver
	List(ctx context.Context, l api.Listing, f filters.Filter, p api.Page) (api.ListResult, error)
	PurchaseTypes(ctx context.Context) (api.Lookup, error)
	PurchaseSubTypes(ctx context.Context) (api.Lookup, error)
}

var _ Source = (*api.Client)(nil)

// Grid binds ordered default columns to one listing.
type Grid struct {
	Name    string
	Usage   string
	Listing api.Listing
	// Defaults is an --attrs spec of the columns shown when none are asked for.
	Defaults string
	// Derived columns are keyed by row key, not output key.
	Derived []Derived
	// Employees are row keys holding employee ids.
	Employees []string
	StatusKey string
}

const commonPR = "prNo,prDate:date:10,purchaseTypeCode:type,purchaseSubTypeCode:subtype,requesterId:requester"

var grids = []Grid{
	{
		Name:      "prq",
		Usage:     "purchase request query",
		Listing:   api.PurchaseRequestListing,
		Defaults:  commonPR + ",totalAmount:amount:c,status",
		Derived:   []Derived{{Key: "purchaseTypeCode", Ref: PurchaseTypes}, {Key: "purchaseSubTypeCode", Ref: PurchaseSubTypes}},
		Employees: []string{"requesterId"},
		StatusKey: "status",
	},
	{
		Name:      "aq",
		Usage:     "approval query",
		Listing:   api.ApprovalListing,
		Defaults:  commonPR + ",totalAmount:amount:c,picId:pic,step,status",
		Derived:   []Derived{{Key: "purchaseTypeCode", Ref: PurchaseTypes}, {Key: "purchaseSubTypeCode", Ref: PurchaseSubTypes}},
		Employees: []string{"requesterId", "picId"},
		StatusKey: "status",
	},
	{
		Name:      "cpq",
		Usage:     "cancel period query",
		Listing:   api.CancelPeriodListing,
		Defaults:  commonPR + ",periodEnd:until:10,picId:pic,status",
		Derived:   []Derived{{Key: "purchaseTypeCode", Ref: PurchaseTypes}, {Key: "purchaseSubTypeCode", Ref: PurchaseSubTypes}},
		Employees: []string{"requesterId", "picId"},
		StatusKey: "status",
	},
	{
		Name:      "poq",
		Usage:     "purchase order confirmation query",
		Listing:   api.ConfirmPOListing,
		Defaults:  "poNumber:po,prNo,vendorName:vendor,totalAmount:amount:c,picId:pic,status",
		Employees: []string{"picId"},
		StatusKey: "status",
	},
	{
		Name:      "rcq",
		Usage:     "goods receipt query",
		Listing:   api.ReceiveListing,
		Defaults:  "poNumber:po,vendorName:vendor,deliveryDate:delivery:10,receivedQty:received,orderedQty:ordered,picId:pic,status",
		Employees: []string{"picId"},
		StatusKey: "status",
	},
	{
		Name:      "rlq",
		Usage:     "purchase order release query",
		Listing:   api.ReleaseListing,
		Defaults:  "poNumber:po,prNo,vendorName:vendor,totalAmount:amount:c,releasedBy:by,status",
		Employees: []string{"releasedBy"},
		StatusKey: "status",
	},
}

// Grids returns every grid definition, ordered by name.
func Grids() []Grid {
	out := append([]Grid(nil), grids...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByName finds the grid called name.
func ByName(name string) (Grid, bool) {
	for _, g := range grids {
		if g.Name == name {
			return g, true
		}
	}
	return Grid{}, false
}

// Request is one invocation of a grid.
type Request struct {
	Filter filters.Filter
	Page   api.Page
	All    bool
}

// Data is a fetched listing plus the reference data its derived columns need.
type Data struct {
	Result  api.ListResult
	Lookups map[Reference]api.Lookup
}

func (g Grid) needs(ref Reference) bool {
	for _, d := range g.Derived {
		if d.Ref == ref {
			return true
		}
	}
	return false
}

// Load fetches the listing and its reference data concurrently. A reference
// list that fails to load is logged and left nil, so derived columns fall
// back to raw codes. A failed listing fails the load.
func (g Grid) Load(ctx context.Context, src Source, req Request) (Data, error) {
	var (
		data  = Data{Lookups: map[Reference]api.Lookup{}}
		types api.Lookup
		subs  api.Lookup
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		result, err := Paginate(egCtx, req.Page, func(ctx context.Context, p api.Page) (api.ListResult, error) {
			return src.List(ctx, g.Listing, req.Filter, p)
		}, req.All)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", g.Listing.Op, err)
		}
		data.Result = result
		return nil
	})
	if g.needs(PurchaseTypes) {
		eg.Go(func() error {
			l, err := src.PurchaseTypes(egCtx)
			if err != nil {
				log.WithError(err).Warn("purchase types unavailable")
				return nil
			}
			types = l
			return nil
		})
	}
	if g.needs(PurchaseSubTypes) {
		eg.Go(func() error {
			l, err := src.PurchaseSubTypes(egCtx)
			if err != nil {
				log.WithError(err).Warn("purchase sub types unavailable")
				return nil
			}
			subs = l
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Data{}, err
	}

	if types != nil {
		data.Lookups[PurchaseTypes] = types
	}
	if subs != nil {
		data.Lookups[PurchaseSubTypes] = subs
	}
	return data, nil
}

// Rows filters the loaded data with al and opts, resolves derived columns and
// employee names, then applies transforms and sort.
func (g Grid) Rows(ctx context.Context, src EmployeeResolver, data Data, al attrs.AttrList, opts output.Options) []map[string]interface{} {
	derived := make([]Derived, 0, len(g.Derived))
	for _, d := range g.Derived {
		if k, ok := outputKey(al, d.Key); ok {
			derived = append(derived, Derived{Key: k, Ref: d.Ref})
		}
	}
	var employees []string
	for _, e := range g.Employees {
		if k, ok := outputKey(al, e); ok {
			employees = append(employees, k)
		}
	}

	return output.Rows(data.Result.Rows, al, opts, "",
		func(rows []map[string]interface{}) { applyDerived(rows, derived, data.Lookups) },
		func(rows []map[string]interface{}) { EnrichEmployees(ctx, src, rows, employees) },
	)
}

// Show loads, prepares and renders the grid to w. Raw output is the merged
// server rows untouched.
func (g Grid) Show(ctx context.Context, src Source, req Request, al attrs.AttrList, opts output.Options, w io.Writer) (api.ListResult, error) {
	data, err := g.Load(ctx, src, req)
	if err != nil {
		return api.ListResult{}, err
	}

	if opts.Output == "raw" {
		_, err := w.Write(data.Result.Rows)
		return data.Result, err
	}

	if opts.Styler == nil && g.StatusKey != "" {
		if k, ok := outputKey(al, g.StatusKey); ok {
			opts.Styler = StatusStyler(k)
		}
	}

	rows := g.Rows(ctx, src, data, al, opts)
	return data.Result, output.Render(rows, al, opts, w)
}

// outputKey is the output key of the attr reading row key k.
func outputKey(al attrs.AttrList, k string) (string, bool) {
	for _, a := range al {
		if a.Key == k {
			return a.OutputKey, true
		}
	}
	return "", false
}
