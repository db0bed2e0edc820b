// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/procurectl/internal/api"
	"github.com/staranto/procurectl/internal/filters"
	"github.com/staranto/procurectl/internal/meta"
	"github.com/staranto/procurectl/internal/output"
	"github.com/staranto/procurectl/internal/table"
)

// serverFilter is the part of --filter the server applies: _key=value terms.
func serverFilter(cmd *cli.Command) filters.Filter {
	return filters.ServerFilter(filters.BuildExprs(cmd.String("filter")))
}

func gridRequest(cmd *cli.Command) table.Request {
	return table.Request{
		Filter: serverFilter(cmd),
		Page:   api.Page{Number: cmd.Int("page"), Size: cmd.Int("page-size")},
		All:    cmd.Bool("all"),
	}
}

// GridCommandAction lists one grid with the common output flags.
func GridCommandAction(g table.Grid) func(context.Context, *cli.Command, *api.Client) error {
	return func(ctx context.Context, cmd *cli.Command, client *api.Client) error {
		req := gridRequest(cmd)
		log.Debugf("%s request: filter=%s page=%+v all=%v", g.Name, req.Filter.Encode(), req.Page, req.All)

		if cmd.Bool("schema") {
			result, err := client.List(ctx, g.Listing, req.Filter, req.Page)
			if err != nil {
				return err
			}
			output.DumpSchema(writer(cmd), gjson.ParseBytes(result.Rows))
			return nil
		}

		al, err := BuildAttrs(cmd, g.Defaults)
		if err != nil {
			return err
		}
		log.Debugf("attrs: %v", al.String())

		opts := renderOptions(cmd)
		var result api.ListResult
		err = Emit(ctx, cmd, func(w io.Writer) error {
			var err error
			result, err = g.Show(ctx, client, req, al, opts, w)
			return err
		})
		if err != nil {
			return err
		}

		if opts.Output == "text" && result.HasMore() && !req.All {
			fmt.Fprintf(errWriter(cmd), "page %d of %d rows, use --page %d or --all for more\n",
				result.Page.Number, result.TotalCount, result.Page.Next().Number)
		}
		return nil
	}
}

// GridCommandBuilder constructs the listing command for g.
func GridCommandBuilder(g table.Grid, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      g.Name,
		Usage:     g.Usage,
		UsageText: fmt.Sprintf("procurectl %s [options]", g.Name),
		Flags:     NewPagingFlags(g.Name),
		Action:    ClientAction(GridCommandAction(g)),
		Meta:      meta,
	}).Build()
}
