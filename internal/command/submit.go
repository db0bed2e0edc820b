// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/procurectl/internal/api"
	"github.com/staranto/procurectl/internal/meta"
	"github.com/staranto/procurectl/internal/output"
	"github.com/staranto/procurectl/internal/workflow"
)

// confirmerFactory picks how a submission is confirmed. Tests swap it.
var confirmerFactory = func(cmd *cli.Command) workflow.Confirmer {
	return workflow.NewConfirmer(cmd.Bool("yes"), os.Stdin, errWriter(cmd))
}

// submission describes one workflow command.
type submission struct {
	name     string
	usage    string
	argName  string
	verb     string
	flags    func() []cli.Flag
	form     func(cmd *cli.Command) workflow.Form
	submit   func(ctx context.Context, cmd *cli.Command, c *api.Client, id string) ([]byte, error)
	examples [][2]string
}

func remarksFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "remarks",
		Aliases: []string{"r"},
		Usage:   "remarks recorded with the decision",
	}
}

func picFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "pic",
		Usage:   "employee id of the person in charge",
		Sources: cli.EnvVars("PROCURECTL_PIC"),
	}
}

func decisionFlags() []cli.Flag {
	return []cli.Flag{remarksFlag(), picFlag()}
}

func idField(cmd *cli.Command, name string) workflow.Field {
	return workflow.Field{Name: name, Value: cmd.Args().First(), Required: true}
}

func decisionForm(arg string, remarksRequired bool) func(*cli.Command) workflow.Form {
	return func(cmd *cli.Command) workflow.Form {
		return workflow.Form{
			idField(cmd, arg),
			{Name: "remarks", Value: cmd.String("remarks"), Required: remarksRequired},
		}
	}
}

func decision(cmd *cli.Command, a api.Action) api.Decision {
	return api.Decision{
		Action:  a,
		Remarks: strings.TrimSpace(cmd.String("remarks")),
		PIC:     strings.TrimSpace(cmd.String("pic")),
	}
}

func approval(a api.Action) func(context.Context, *cli.Command, *api.Client, string) ([]byte, error) {
	return func(ctx context.Context, cmd *cli.Command, c *api.Client, id string) ([]byte, error) {
		return c.SubmitApproval(ctx, id, decision(cmd, a))
	}
}

var submissions = []submission{
	{
		name: "approve", usage: "approve a purchase request", argName: "PR_NO", verb: "Approve",
		flags:  decisionFlags,
		form:   decisionForm("PR_NO", false),
		submit: approval(api.ActionApprove),
		examples: [][2]string{
			{"procurectl approve PR-2025-0012", "approve after confirming"},
			{"procurectl approve PR-2025-0012 -r 'budget ok' --yes", "approve without a prompt"},
		},
	},
	{
		name: "reject", usage: "reject a purchase request", argName: "PR_NO", verb: "Reject",
		flags:  decisionFlags,
		form:   decisionForm("PR_NO", true),
		submit: approval(api.ActionReject),
	},
	{
		name: "revise", usage: "send a purchase request back for revision", argName: "PR_NO", verb: "Return for revision",
		flags:  decisionFlags,
		form:   decisionForm("PR_NO", true),
		submit: approval(api.ActionRevise),
	},
	{
		name: "cancel-period", usage: "approve the cancellation of a purchase request", argName: "PR_NO", verb: "Cancel",
		flags: decisionFlags,
		form:  decisionForm("PR_NO", true),
		submit: func(ctx context.Context, cmd *cli.Command, c *api.Client, id string) ([]byte, error) {
			return c.SubmitCancelPeriod(ctx, id, decision(cmd, api.ActionApprove))
		},
	},
	{
		name: "confirm", usage: "confirm a purchase order with the vendor", argName: "PO_NUMBER", verb: "Confirm",
		flags: decisionFlags,
		form:  decisionForm("PO_NUMBER", false),
		submit: func(ctx context.Context, cmd *cli.Command, c *api.Client, id string) ([]byte, error) {
			return c.SubmitConfirmPO(ctx, id, decision(cmd, api.ActionApprove))
		},
	},
	{
		name: "receive", usage: "record goods received against a purchase order", argName: "PO_NUMBER", verb: "Receive",
		flags: func() []cli.Flag {
			return []cli.Flag{
				remarksFlag(),
				&cli.StringFlag{
					Name:  "date",
					Usage: "receive date, YYYY-MM-DD",
					Value: time.Now().Format(time.DateOnly),
				},
				&cli.StringFlag{
					Name:  "delivery-note",
					Usage: "vendor delivery note number",
				},
				&cli.StringSliceFlag{
					Name:  "line",
					Usage: "ITEM=QTY received, repeatable",
				},
			}
		},
		form: func(cmd *cli.Command) workflow.Form {
			return workflow.Form{
				idField(cmd, "PO_NUMBER"),
				{Name: "date", Value: cmd.String("date"), Required: true, Check: checkDate},
				{Name: "line", Value: strings.Join(cmd.StringSlice("line"), ","), Required: true, Check: checkLines},
			}
		},
		submit: func(ctx context.Context, cmd *cli.Command, c *api.Client, id string) ([]byte, error) {
			lines, err := parseLines(cmd.StringSlice("line"))
			if err != nil {
				return nil, err
			}
			return c.SubmitReceive(ctx, id, api.Receipt{
				ReceiveDate:  cmd.String("date"),
				DeliveryNote: strings.TrimSpace(cmd.String("delivery-note")),
				Remarks:      strings.TrimSpace(cmd.String("remarks")),
				Lines:        lines,
			})
		},
		examples: [][2]string{
			{"procurectl receive PO-77 --line LAP-01=2 --line BAG-03=2", "receive two lines"},
		},
	},
	{
		name: "release", usage: "release a purchase order", argName: "PO_NUMBER", verb: "Release",
		flags: decisionFlags,
		form:  decisionForm("PO_NUMBER", false),
		submit: func(ctx context.Context, cmd *cli.Command, c *api.Client, id string) ([]byte, error) {
			return c.SubmitRelease(ctx, id, decision(cmd, api.ActionApprove))
		},
	},
}

func checkDate(v string) error {
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		return errors.New("must be YYYY-MM-DD")
	}
	return nil
}

func checkLines(v string) error {
	_, err := parseLines(strings.Split(v, ","))
	return err
}

// parseLines reads ITEM=QTY pairs. Quantities must be positive.
func parseLines(specs []string) ([]api.ReceiptLine, error) {
	var lines []api.ReceiptLine
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		item, qty, ok := strings.Cut(spec, "=")
		item = strings.TrimSpace(item)
		if !ok || item == "" {
			return nil, fmt.Errorf("line %q must be ITEM=QTY", spec)
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(qty), 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("line %q needs a positive quantity", spec)
		}
		lines = append(lines, api.ReceiptLine{ItemCode: item, Qty: n})
	}
	if len(lines) == 0 {
		return nil, errors.New("at least one line is required")
	}
	return lines, nil
}

// SubmitCommandAction runs s through the submission workflow.
func SubmitCommandAction(s submission) func(context.Context, *cli.Command, *api.Client) error {
	return func(ctx context.Context, cmd *cli.Command, client *api.Client) error {
		id := strings.TrimSpace(cmd.Args().First())
		prompt := fmt.Sprintf("%s %s?", s.verb, id)
		if r := strings.TrimSpace(cmd.String("remarks")); r != "" {
			prompt += "\n\nRemarks: " + r
		}

		wf := workflow.New(s.name, confirmerFactory(cmd))
		res, err := wf.Run(ctx, s.form(cmd), prompt, func(ctx context.Context) ([]byte, error) {
			return s.submit(ctx, cmd, client, id)
		})
		if errors.Is(err, workflow.ErrCancelled) {
			fmt.Fprintln(errWriter(cmd), "cancelled, nothing was submitted")
			return nil
		}
		if err != nil {
			return err
		}
		log.Debugf("%s %s: %s", s.name, id, res.State)

		switch cmd.String("output") {
		case "json", "raw":
			_, err = fmt.Fprintln(writer(cmd), strings.TrimSpace(string(res.Body)))
		default:
			_, err = fmt.Fprintf(writer(cmd), "%s: %s done\n", id, s.name)
		}
		return err
	}
}

// SubmitCommandBuilder constructs the command for s.
func SubmitCommandBuilder(s submission, meta meta.Meta) *cli.Command {
	flags := append([]cli.Flag{
		newYesFlag(),
		newTldrFlag(),
		&cli.BoolFlag{
			Name:        "examples",
			Usage:       "show usage examples",
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format of the server response",
			Sources: fromConfig(s.name, "output"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
	}, s.flags()...)

	return &cli.Command{
		Name:      s.name,
		Usage:     s.usage,
		UsageText: fmt.Sprintf("procurectl %s %s [options]", s.name, s.argName),
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("examples") {
				output.DumpExamples(writer(cmd), s.examples)
				return nil
			}
			return ClientAction(SubmitCommandAction(s))(ctx, cmd)
		},
	}
}
