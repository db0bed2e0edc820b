// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/procurectl/internal/api"
	"github.com/staranto/procurectl/internal/meta"
	"github.com/staranto/procurectl/internal/output"
)

const typesDefaultAttrs = "code,name"

// TypesCommandAction lists purchase types, or sub types with --sub.
func TypesCommandAction(ctx context.Context, cmd *cli.Command, client *api.Client) error {
	fetch := client.GetPurchaseTypes
	if cmd.Bool("sub") {
		fetch = client.GetPurchaseSubTypes
	}

	raw, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	if cmd.Bool("schema") {
		output.DumpSchema(writer(cmd), gjson.ParseBytes(raw))
		return nil
	}

	al, err := BuildAttrs(cmd, typesDefaultAttrs)
	if err != nil {
		return err
	}
	opts := renderOptions(cmd)
	return Emit(ctx, cmd, func(w io.Writer) error {
		return output.SliceDiceSpit(raw, al, opts, "", w)
	})
}

func TypesCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "types",
		Usage:     "purchase type reference data",
		UsageText: "procurectl types [--sub] [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "sub",
				Usage: "list purchase sub types instead",
			},
		},
		Action: ClientAction(TypesCommandAction),
		Meta:   meta,
	}).Build()
}
