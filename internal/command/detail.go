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
	"github.com/staranto/procurectl/internal/meta"
	"github.com/staranto/procurectl/internal/output"
)

// prSection is one of the reads the pr command can show.
type prSection struct {
	flag     string
	defaults string
	fetch    func(*api.Client) func(context.Context, string) ([]byte, error)
}

var prSections = []prSection{
	{
		flag:     "items",
		defaults: "itemCode:item,description:desc:30,qty,uom,unitPrice:price:c,amount::c",
		fetch:    func(c *api.Client) func(context.Context, string) ([]byte, error) { return c.GetPRItems },
	},
	{
		flag:     "history",
		defaults: "step,approverId:approver,decision,decidedAt:when:r,remarks:remarks:40",
		fetch:    func(c *api.Client) func(context.Context, string) ([]byte, error) { return c.GetApprovalHistory },
	},
	{
		flag:     "extra",
		defaults: "",
		fetch:    func(c *api.Client) func(context.Context, string) ([]byte, error) { return c.GetPRAdditionalData },
	},
}

const prDefaultAttrs = "prNo,prDate:date:10,purchaseTypeCode:type,requesterId:requester,departmentCode:dept,totalAmount:amount:c,status"

// PrCommandAction shows a purchase request, or one of its sub resources.
func PrCommandAction(ctx context.Context, cmd *cli.Command, client *api.Client) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("pr: %w", api.ErrMissingID)
	}

	defaults, fetch := prDefaultAttrs, client.GetPRDetails
	for _, s := range prSections {
		if cmd.Bool(s.flag) {
			defaults, fetch = s.defaults, s.fetch(client)
			break
		}
	}

	raw, err := fetch(ctx, id)
	if err != nil {
		return err
	}
	if raw == nil {
		// Expected absence, for instance no additional data.
		log.Debugf("pr %s: nothing to show", id)
		fmt.Fprintf(errWriter(cmd), "%s: nothing recorded\n", id)
		return nil
	}

	return showDetail(ctx, cmd, raw, defaults)
}

func showDetail(ctx context.Context, cmd *cli.Command, raw []byte, defaults string) error {
	if cmd.Bool("schema") {
		output.DumpSchema(writer(cmd), gjson.ParseBytes(raw))
		return nil
	}

	// Without defaults every top level key becomes a column.
	if defaults == "" && cmd.String("attrs") == "" {
		defaults = topLevelKeys(raw)
	}
	al, err := BuildAttrs(cmd, defaults)
	if err != nil {
		return err
	}
	opts := renderOptions(cmd)
	return Emit(ctx, cmd, func(w io.Writer) error {
		return output.SliceDiceSpit(raw, al, opts, "", w)
	})
}

func topLevelKeys(raw []byte) string {
	doc := gjson.ParseBytes(raw)
	if doc.IsArray() {
		doc = doc.Get("0")
	}
	var keys string
	doc.ForEach(func(k, _ gjson.Result) bool {
		if keys != "" {
			keys += ","
		}
		keys += k.String()
		return true
	})
	return keys
}

func PrCommandBuilder(meta meta.Meta) *cli.Command {
	var flags []cli.Flag
	for _, s := range prSections {
		flags = append(flags, &cli.BoolFlag{
			Name:  s.flag,
			Usage: "show the purchase request " + s.flag,
		})
	}
	return (&QueryCommandBuilder{
		Name:      "pr",
		Usage:     "purchase request detail",
		UsageText: "procurectl pr PR_NO [--items|--history|--extra] [options]",
		Flags:     flags,
		Action:    ClientAction(PrCommandAction),
		Meta:      meta,
	}).Build()
}

const poDefaultAttrs = "poNumber:po,prNo,vendorName:vendor,orderDate:date:10,totalAmount:amount:c,status"

// PoCommandAction shows one purchase order.
func PoCommandAction(ctx context.Context, cmd *cli.Command, client *api.Client) error {
	po := cmd.Args().First()
	if po == "" {
		return fmt.Errorf("po: %w", api.ErrMissingID)
	}
	raw, err := client.GetPODetails(ctx, po)
	if err != nil {
		return err
	}
	return showDetail(ctx, cmd, raw, poDefaultAttrs)
}

func PoCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "po",
		Usage:     "purchase order detail",
		UsageText: "procurectl po PO_NUMBER [options]",
		Action:    ClientAction(PoCommandAction),
		Meta:      meta,
	}).Build()
}
