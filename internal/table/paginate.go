// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"context"
	"errors"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/procurectl/internal/api"
)

// maxPages stops a walk against a server whose totalCount never converges.
const maxPages = 500

// ErrTooManyPages is returned when --all would walk more than maxPages.
var ErrTooManyPages = errors.New("listing exceeds page limit")

// Fetcher retrieves one page of a listing.
type Fetcher func(context.Context, api.Page) (api.ListResult, error)

// Paginate fetches start and, when all is set, every following page. The
// merged result carries the rows of every page fetched, the first page number
// and the server's last reported totalCount.
func Paginate(ctx context.Context, start api.Page, fetch Fetcher, all bool) (api.ListResult, error) {
	if all && start.Number <= 0 {
		start.Number = 1
	}

	var (
		rows   []string
		merged api.ListResult
	)

	page := start
	for n := 0; ; n++ {
		if n == maxPages {
			return api.ListResult{}, ErrTooManyPages
		}

		result, err := fetch(ctx, page)
		if err != nil {
			return api.ListResult{}, err
		}
		if n == 0 {
			merged.Page = result.Page
		}
		merged.TotalCount = result.TotalCount

		gjson.ParseBytes(result.Rows).ForEach(func(_, row gjson.Result) bool {
			rows = append(rows, row.Raw)
			return true
		})

		// An empty page ends the walk even when totalCount says otherwise.
		if !all || !result.HasMore() || result.Len() == 0 {
			break
		}
		page = result.Page.Next()
		log.Debugf("fetching page %d", page.Number)
	}

	merged.Rows = []byte("[" + strings.Join(rows, ",") + "]")
	return merged, nil
}
