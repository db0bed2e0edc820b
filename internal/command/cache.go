// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/procurectl/internal/api"
	"github.com/staranto/procurectl/internal/cacheutil"
	"github.com/staranto/procurectl/internal/meta"
)

// keyLister is implemented by caches that can enumerate their keys.
type keyLister interface {
	Keys() []string
}

// CachePurgeAction drops cached responses. With --older-than only files
// older than that many hours go; with --match only keys containing the
// substring; otherwise everything.
func CachePurgeAction(ctx context.Context, cmd *cli.Command, client *api.Client) error {
	if hours := cmd.Int("older-than"); hours > 0 {
		n, err := cacheutil.Purge(hours)
		if err != nil {
			return err
		}
		fmt.Fprintf(writer(cmd), "removed %d cache files\n", n)
		return nil
	}

	if m := strings.TrimSpace(cmd.String("match")); m != "" {
		n := client.Cache().InvalidateMatching(m)
		fmt.Fprintf(writer(cmd), "removed %d entries\n", n)
		return nil
	}

	client.Cache().InvalidateAll()
	fmt.Fprintln(writer(cmd), "cache cleared")
	return nil
}

// CacheListAction prints the cached keys.
func CacheListAction(ctx context.Context, cmd *cli.Command, client *api.Client) error {
	kl, ok := client.Cache().(keyLister)
	if !ok {
		return nil
	}
	for _, k := range kl.Keys() {
		fmt.Fprintln(writer(cmd), k)
	}
	return nil
}

func CacheCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "inspect and clear the response cache",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			{
				Name:      "purge",
				Usage:     "remove cached responses",
				UsageText: "procurectl cache purge [--match KEY | --older-than HOURS]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "match",
						Usage: "only remove keys containing this text, e.g. an entity id",
					},
					&cli.IntFlag{
						Name:  "older-than",
						Usage: "only remove files older than this many hours",
					},
				},
				Action: ClientAction(CachePurgeAction),
			},
			{
				Name:   "ls",
				Usage:  "list cached keys",
				Action: ClientAction(CacheListAction),
			},
		},
	}
}
