// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/procurectl/internal/api"
	"github.com/staranto/procurectl/internal/config"
	"github.com/staranto/procurectl/internal/filters"
	"github.com/staranto/procurectl/internal/meta"
	"github.com/staranto/procurectl/internal/search"
	"github.com/staranto/procurectl/internal/table"
)

// searchInput is where queries are read from. Tests swap it.
var searchInput = func() *os.File { return os.Stdin }

// SearchCommandAction re-runs a grid as the query changes. On a terminal it
// opens an interactive prompt, otherwise each stdin line is a query.
func SearchCommandAction(ctx context.Context, cmd *cli.Command, client *api.Client) error {
	name := cmd.Args().First()
	if name == "" {
		name = "prq"
	}
	g, ok := table.ByName(name)
	if !ok {
		return fmt.Errorf("unknown grid %q", name)
	}

	al, err := BuildAttrs(cmd, g.Defaults)
	if err != nil {
		return err
	}
	opts := renderOptions(cmd)
	page := api.Page{Number: 1, Size: cmd.Int("page-size")}

	run := func(f filters.Filter) (string, error) {
		// Terms from --filter apply to every query.
		for k, v := range serverFilter(cmd) {
			if _, set := f[k]; !set {
				f[k] = v
			}
		}
		var buf bytes.Buffer
		if _, err := g.Show(ctx, client, table.Request{Filter: f, Page: page}, al, opts, &buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	delay, _ := config.GetDuration("search.debounce", filters.DefaultDebounce)
	if d := cmd.Duration("debounce"); d > 0 {
		delay = d
	}

	in := searchInput()
	if term.IsTerminal(int(in.Fd())) {
		return search.Interactive(ctx, in, writer(cmd), delay, run)
	}
	return search.Lines(ctx, in, writer(cmd), delay, run)
}

func SearchCommandBuilder(meta meta.Meta) *cli.Command {
	var grids []string
	for _, g := range table.Grids() {
		grids = append(grids, g.Name)
	}
	return (&QueryCommandBuilder{
		Name:      "search",
		Usage:     "search a listing as you type",
		UsageText: fmt.Sprintf("procurectl search [%v] [options]", grids),
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "delay after the last keystroke before searching",
			},
			&cli.IntFlag{
				Name:    "page-size",
				Usage:   "rows per search",
				Sources: fromConfig("search", "page-size"),
				Value:   20, //nolint:mnd
			},
		},
		Action: ClientAction(SearchCommandAction),
		Meta:   meta,
	}).Build()
}
