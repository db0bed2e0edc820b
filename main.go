// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/procurectl/internal/cacheutil"
	"github.com/staranto/procurectl/internal/command"
	"github.com/staranto/procurectl/internal/config"
	mylog "github.com/staranto/procurectl/internal/log"
	"github.com/staranto/procurectl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	// Best-effort: pre-create cache directory when caching is enabled.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil && ok {
		// Non-fatal: print to stderr and continue.
		fmt.Fprintln(os.Stderr, err)
	} else if ok {
		sweepCache()
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// defaultCleanHours is the cache.clean used when the config has none.
const defaultCleanHours = 24

// sweepCache drops disk entries older than cache.clean hours. Zero leaves the
// cache alone.
func sweepCache() {
	hours, _ := config.GetInt("cache.clean", defaultCleanHours)
	if hours <= 0 {
		return
	}
	n, err := cacheutil.Purge(hours)
	if err != nil {
		log.WithError(err).Debug("cache sweep")
		return
	}
	log.Debugf("cache sweep removed %d entries", n)
}

// mangleArguments expands a named argument set from config. The set is
// chosen with @name anywhere after the subcommand, @defaults otherwise, and
// its entries are spliced in right after the subcommand so explicit flags on
// the command line still win.
func mangleArguments(args []string) []string {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2)
	copy(preamble, args[:2])

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help")
		}
	}

	// Flags of the root command have no set.
	if strings.HasPrefix(args[1], "-") {
		return args
	}

	set := "defaults"
	rest := make([]string, 0, len(args)-2)
	for _, a := range args[2:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 && set == "defaults" {
			set = a[1:]
			continue
		}
		rest = append(rest, a)
	}

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)
	var expanded []string
	for _, arg := range setArgs {
		expanded = append(expanded, strings.Fields(arg)...)
	}

	result := append(preamble, expanded...) //nolint:gocritic
	result = append(result, rest...)

	log.Debugf("set=%s, args=%v", set, result)
	return result
}
