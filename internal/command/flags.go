// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/procurectl/internal/config"
)

var (
	// cfg is the config the flag sources read from. InitApp sets it.
	cfg config.Type
)

func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the row schema of the first page",
		HideDefault: true,
	}
}

func newTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

func newYesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "yes",
		Aliases:     []string{"y"},
		Usage:       "submit without asking for confirmation",
		Sources:     cli.EnvVars("PROCURECTL_YES"),
		HideDefault: true,
	}
}

// fromConfig chains the namespaced and global config keys for name.
func fromConfig(ns, name string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(
		yaml.YAML(ns+"."+name, altsrc.StringSourcer(cfg.Source)),
		yaml.YAML(name, altsrc.StringSourcer(cfg.Source)),
	)
}

// NewGlobalFlags are the output flags every command that prints rows takes.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns := params[0]
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"attrs", altsrc.StringSourcer(cfg.Source)),
			),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: fromConfig(ns, "color"),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "export",
			Aliases: []string{"x"},
			Usage:   "also upload the rendered output to s3://bucket/key",
			Validator: func(value string) error {
				return FlagValidators(value, ExportValidator)
			},
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show timestamps in local time",
			Sources: fromConfig(ns, "local"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: fromConfig(ns, "output"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: fromConfig(ns, "titles"),
			Value:   false,
		},
	}

	return
}

// NewPagingFlags control server side paging of a listing.
func NewPagingFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "all",
			Usage: "walk every page of the listing",
		},
		&cli.IntFlag{
			Name:    "page",
			Aliases: []string{"p"},
			Usage:   "page number to fetch",
			Validator: func(value int) error {
				return FlagValidators(value, NonNegativeValidator)
			},
		},
		&cli.IntFlag{
			Name:    "page-size",
			Usage:   "rows per page",
			Sources: fromConfig(ns, "page-size"),
			Value:   50, //nolint:mnd
			Validator: func(value int) error {
				return FlagValidators(value, NonNegativeValidator)
			},
		},
	}
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
