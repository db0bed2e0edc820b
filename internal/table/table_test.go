// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package table

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/procurectl/internal/api"
	"github.com/staranto/procurectl/internal/attrs"
	"github.com/staranto/procurectl/internal/filters"
	"github.com/staranto/procurectl/internal/output"
)

// fakeSource serves fixed pages and reference data from memory.
type fakeSource struct {
	mu        sync.Mutex
	pages     map[int]string
	pageSize  int
	total     int
	types     api.Lookup
	subs      api.Lookup
	refErr    error
	listErr   error
	employees map[string]api.Employee
	empCalls  [][]string
	listCalls []api.Page
}

func (f *fakeSource) List(_ context.Context, _ api.Listing, _ filters.Filter, p api.Page) (api.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, p)
	if f.listErr != nil {
		return api.ListResult{}, f.listErr
	}
	n := p.Number
	if n == 0 {
		n = 1
	}
	rows, ok := f.pages[n]
	if !ok {
		rows = "[]"
	}
	return api.ListResult{Rows: []byte(rows), Page: api.Page{Number: n, Size: f.pageSize}, TotalCount: f.total}, nil
}

func (f *fakeSource) PurchaseTypes(context.Context) (api.Lookup, error) {
	return f.types, f.refErr
}

func (f *fakeSource) PurchaseSubTypes(context.Context) (api.Lookup, error) {
	return f.subs, f.refErr
}

func (f *fakeSource) GetEmployees(_ context.Context, ids []string) (map[string]api.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.empCalls = append(f.empCalls, ids)
	return f.employees, nil
}

func TestLabel(t *testing.T) {
	lookup := api.Lookup{"GOODS": "Goods", "SVC": ""}
	tests := []struct {
		name   string
		code   string
		lookup api.Lookup
		want   string
	}{
		{name: "known code", code: "GOODS", lookup: lookup, want: "Goods"},
		{name: "unknown code", code: "ASSET", lookup: lookup, want: "ASSET"},
		{name: "blank name", code: "SVC", lookup: lookup, want: "SVC"},
		{name: "lookup not loaded", code: "GOODS", lookup: nil, want: "GOODS"},
		{name: "empty code", code: "", lookup: lookup, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PurchaseTypeLabel(tt.code, tt.lookup))
			assert.Equal(t, tt.want, PurchaseSubTypeLabel(tt.code, tt.lookup))
		})
	}
}

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		status string
		want   BadgeClass
	}{
		{"APPROVED", BadgeSuccess},
		{"approved", BadgeSuccess},
		{"In Progress", BadgeWarning},
		{"in-progress", BadgeWarning},
		{"REJECTED", BadgeDanger},
		{"DRAFT", BadgeInfo},
		{"ARCHIVED", BadgeNeutral},
		{"", BadgeNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusBadge(tt.status))
		})
	}
}

func TestStatusStyler(t *testing.T) {
	t.Setenv("PROCURECTL_CFG", "/nonexistent/procurectl.yaml")
	s := StatusStyler("state")

	_, ok := s("amount", "APPROVED")
	assert.False(t, ok)

	_, ok = s("state", "-")
	assert.False(t, ok)

	_, ok = s("state", "REJECTED")
	assert.True(t, ok)
}

func TestPaginate(t *testing.T) {
	src := &fakeSource{
		pageSize: 2,
		total:    5,
		pages: map[int]string{
			1: `[{"prNo":"PR001"},{"prNo":"PR002"}]`,
			2: `[{"prNo":"PR003"},{"prNo":"PR004"}]`,
			3: `[{"prNo":"PR005"}]`,
		},
	}
	fetch := func(ctx context.Context, p api.Page) (api.ListResult, error) {
		return src.List(ctx, api.PurchaseRequestListing, nil, p)
	}

	tests := []struct {
		name     string
		start    api.Page
		all      bool
		wantRows int
		wantPage int
	}{
		{name: "single page", start: api.Page{Number: 1, Size: 2}, wantRows: 2, wantPage: 1},
		{name: "second page only", start: api.Page{Number: 2, Size: 2}, wantRows: 2, wantPage: 2},
		{name: "all pages", start: api.Page{Size: 2}, all: true, wantRows: 5, wantPage: 1},
		{name: "all from page two", start: api.Page{Number: 2, Size: 2}, all: true, wantRows: 3, wantPage: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Paginate(context.Background(), tt.start, fetch, tt.all)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, got.Len())
			assert.Equal(t, tt.wantPage, got.Page.Number)
			assert.Equal(t, 5, got.TotalCount)
		})
	}
}

func TestPaginate_StopsOnEmptyPage(t *testing.T) {
	src := &fakeSource{pageSize: 2, total: 10, pages: map[int]string{1: `[{"prNo":"PR001"},{"prNo":"PR002"}]`}}
	fetch := func(ctx context.Context, p api.Page) (api.ListResult, error) {
		return src.List(ctx, api.PurchaseRequestListing, nil, p)
	}

	got, err := Paginate(context.Background(), api.Page{Size: 2}, fetch, true)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	assert.Len(t, src.listCalls, 2)
}

func TestPaginate_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Paginate(context.Background(), api.Page{}, func(context.Context, api.Page) (api.ListResult, error) {
		return api.ListResult{}, boom
	}, true)
	assert.ErrorIs(t, err, boom)

	endless := func(_ context.Context, p api.Page) (api.ListResult, error) {
		return api.ListResult{Rows: []byte(`[{}]`), Page: api.Page{Number: p.Number, Size: 1}, TotalCount: 1 << 30}, nil
	}
	_, err = Paginate(context.Background(), api.Page{Size: 1}, endless, true)
	assert.ErrorIs(t, err, ErrTooManyPages)
}

func TestEnrichEmployees(t *testing.T) {
	src := &fakeSource{employees: map[string]api.Employee{
		"E1": {ID: "E1", Name: "Ana Putri"},
		"E2": {ID: "E2", Name: "Budi Santoso"},
	}}
	rows := []map[string]interface{}{
		{"requester": "E1", "pic": "E2"},
		{"requester": "E2", "pic": "E9"},
		{"requester": nil, "pic": "E1"},
	}

	EnrichEmployees(context.Background(), src, rows, []string{"requester", "pic"})

	require.Len(t, src.empCalls, 1, "one batched lookup")
	assert.ElementsMatch(t, []string{"E1", "E2", "E9"}, src.empCalls[0])
	assert.Equal(t, "Ana Putri", rows[0]["requester"])
	assert.Equal(t, "Budi Santoso", rows[0]["pic"])
	assert.Equal(t, "E9", rows[1]["pic"], "unresolved id stays raw")
	assert.Nil(t, rows[2]["requester"])
}

func TestEnrichEmployees_NoIDs(t *testing.T) {
	src := &fakeSource{}
	EnrichEmployees(context.Background(), src, []map[string]interface{}{{"requester": ""}}, []string{"requester"})
	assert.Empty(t, src.empCalls)
}

func TestGridByName(t *testing.T) {
	for _, name := range []string{"prq", "aq", "cpq", "poq", "rcq", "rlq"} {
		g, ok := ByName(name)
		if assert.True(t, ok, name) {
			assert.NotEmpty(t, g.Defaults)
			assert.NotEmpty(t, g.Listing.Op)
		}
	}
	_, ok := ByName("wq")
	assert.False(t, ok)
	assert.Len(t, Grids(), 6)
}

const prRows = `[
	{"prNo":"PR001","prDate":"2025-06-01T08:00:00Z","purchaseTypeCode":"GOODS","purchaseSubTypeCode":"IT","requesterId":"E1","totalAmount":1234.5,"status":"APPROVED"},
	{"prNo":"PR002","prDate":"2025-06-02T08:00:00Z","purchaseTypeCode":"SVC","purchaseSubTypeCode":"CLEAN","requesterId":"E3","totalAmount":99,"status":"DRAFT"}
]`

func TestGridShow(t *testing.T) {
	t.Setenv("PROCURECTL_CFG", "/nonexistent/procurectl.yaml")

	tests := []struct {
		name        string
		refErr      error
		wantType    []string
		wantSubtype []string
	}{
		{
			name:        "labels resolved",
			wantType:    []string{"Goods", "Services"},
			wantSubtype: []string{"IT Equipment", "CLEAN"},
		},
		{
			name:        "reference data unavailable shows codes",
			refErr:      errors.New("master data down"),
			wantType:    []string{"GOODS", "SVC"},
			wantSubtype: []string{"IT", "CLEAN"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				pageSize:  10,
				total:     2,
				pages:     map[int]string{1: prRows},
				types:     api.Lookup{"GOODS": "Goods", "SVC": "Services"},
				subs:      api.Lookup{"IT": "IT Equipment"},
				refErr:    tt.refErr,
				employees: map[string]api.Employee{"E1": {ID: "E1", Name: "Ana Putri"}},
			}
			g, _ := ByName("prq")

			var al attrs.AttrList
			require.NoError(t, al.Set(g.Defaults))

			var buf bytes.Buffer
			result, err := g.Show(context.Background(), src, Request{Page: api.Page{Number: 1, Size: 10}}, al,
				output.Options{Output: "json", Sort: "prNo"}, &buf)
			require.NoError(t, err)
			assert.Equal(t, 2, result.TotalCount)

			doc := gjson.Parse(buf.String())
			require.Equal(t, int64(2), doc.Get("#").Int())
			for i := range tt.wantType {
				row := doc.Get(fmt.Sprintf("%d", i))
				assert.Equal(t, tt.wantType[i], row.Get("type").String())
				assert.Equal(t, tt.wantSubtype[i], row.Get("subtype").String())
			}
			assert.Equal(t, "Ana Putri", doc.Get("0.requester").String())
			assert.Equal(t, "E3", doc.Get("1.requester").String())
			assert.Equal(t, "1,234.50", doc.Get("0.amount").String())
			assert.Equal(t, "2025-06-01", doc.Get("0.date").String())
			assert.Len(t, src.empCalls, 1)
		})
	}
}

func TestGridShow_Raw(t *testing.T) {
	src := &fakeSource{pageSize: 10, total: 2, pages: map[int]string{1: prRows}}
	g, _ := ByName("prq")

	var buf bytes.Buffer
	_, err := g.Show(context.Background(), src, Request{}, nil, output.Options{Output: "raw"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(buf.String(), "#").Int())
	assert.Empty(t, src.empCalls)
}

func TestGridShow_ListFailure(t *testing.T) {
	boom := errors.New("gateway timeout")
	src := &fakeSource{listErr: boom}
	g, _ := ByName("aq")

	_, err := g.Show(context.Background(), src, Request{}, nil, output.Options{Output: "json"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "approvals")
}
