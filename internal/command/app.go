// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/procurectl/internal/config"
	"github.com/staranto/procurectl/internal/meta"
	"github.com/staranto/procurectl/internal/table"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// The arg[1] immediately following the binary (arg[0]) is the procurectl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// A missing config file is fine; flags and env still work.
	cfg, _ = config.Load(ns)
	meta := meta.Meta{
		Args:      args,
		Config:    cfg,
		Context:   ctx,
		Namespace: ns,
	}

	app := &cli.Command{
		Name:  "procurectl",
		Usage: "Procurement Control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "procurectl version info",
				HideDefault: true,
			},
		},
	}

	for _, g := range table.Grids() {
		app.Commands = append(app.Commands, GridCommandBuilder(g, meta))
	}

	app.Commands = append(app.Commands,
		TypesCommandBuilder(meta),
		PrCommandBuilder(meta),
		PoCommandBuilder(meta),
	)

	for _, s := range submissions {
		app.Commands = append(app.Commands, SubmitCommandBuilder(s, meta))
	}

	app.Commands = append(app.Commands,
		SearchCommandBuilder(meta),
		CacheCommandBuilder(meta),
		CompletionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
