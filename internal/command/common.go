// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/procurectl/internal/api"
	"github.com/staranto/procurectl/internal/attrs"
	"github.com/staranto/procurectl/internal/aws"
	"github.com/staranto/procurectl/internal/cache"
	"github.com/staranto/procurectl/internal/cacheutil"
	"github.com/staranto/procurectl/internal/config"
	"github.com/staranto/procurectl/internal/meta"
	"github.com/staranto/procurectl/internal/output"
	"github.com/staranto/procurectl/internal/transport"
)

// ErrNoService is returned when the procurement service has no base URL.
var ErrNoService = errors.New("no procurement service configured; set services.procurement")

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr procurectl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "procurectl-"+subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList, err error) {
	for _, d := range defaults {
		if err = al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err = al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	err = al.SetGlobalTransformSpec()
	return
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// writer is where a command prints its results.
func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.ErrWriter != nil {
		return root.ErrWriter
	}
	return os.Stderr
}

// clientFactory builds the api.Client for a command. Tests swap it.
var clientFactory = NewClientFromConfig

// NewClientFromConfig wires transport and cache from the config file. The
// returned func closes the cache.
func NewClientFromConfig() (*api.Client, func(), error) {
	services, err := config.GetStringMap("services")
	if err != nil || services[api.DefaultProcurementService] == "" {
		return nil, nil, ErrNoService
	}

	token := os.Getenv("PROCURECTL_TOKEN")
	if token == "" {
		token, _ = config.GetString("token", "")
	}
	retries, _ := config.GetInt("retries", 2) //nolint:mnd

	caller := transport.New(
		transport.WithServices(services),
		transport.WithToken(token),
		transport.WithRetryMax(retries),
	)

	short, _ := config.GetDuration("cache.short", cache.DefaultShortTTL)
	long, _ := config.GetDuration("cache.long", cache.DefaultLongTTL)
	opts := []cache.Option[[]byte]{
		cache.WithTTL[[]byte](cache.Short, short),
		cache.WithTTL[[]byte](cache.Long, long),
	}

	// Entries outlive the process on disk, one directory per server. Without
	// a disk cache the memory stores reap their own expired items.
	if _, ok, err := cacheutil.EnsureBaseDir(); ok && err == nil {
		host := hostOf(services[api.DefaultProcurementService])
		opts = append(opts,
			cache.WithStore[[]byte](cache.Short, cacheutil.NewDiskStore[[]byte](host, cache.Short.String())),
			cache.WithStore[[]byte](cache.Long, cacheutil.NewDiskStore[[]byte](host, cache.Long.String())),
		)
	} else {
		opts = append(opts, cache.WithJanitor[[]byte]())
	}

	c := cache.New(opts...)
	return api.New(caller, c), func() {
		if err := c.Close(); err != nil {
			log.WithError(err).Debug("cache close")
		}
	}, nil
}

func hostOf(base string) string {
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		return u.Host
	}
	return "default"
}

// Emit writes what render produces to the command's writer and, when
// --export is set, uploads the same bytes to S3.
func Emit(ctx context.Context, cmd *cli.Command, render func(io.Writer) error) error {
	target := cmd.String("export")
	if target == "" {
		return render(writer(cmd))
	}

	var buf bytes.Buffer
	if err := render(io.MultiWriter(writer(cmd), &buf)); err != nil {
		return err
	}
	return exportTo(ctx, target, cmd.String("output"), buf.Bytes())
}

// exporter returns the S3 client for --export. Tests swap it.
var exporter = func(ctx context.Context) (aws.Putter, error) {
	awsCfg, err := aws.LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return aws.NewS3(awsCfg), nil
}

func exportTo(ctx context.Context, target, format string, body []byte) error {
	loc, err := aws.ParseS3URI(target)
	if err != nil {
		return err
	}
	p, err := exporter(ctx)
	if err != nil {
		return fmt.Errorf("failed to load aws config: %w", err)
	}
	return aws.Export(ctx, p, loc, body, aws.ContentType(format))
}

// QueryCommandBuilder is a helper that constructs a cli.Command for the
// listing subcommands using a consistent pattern. The builder wires
// metadata, adds tldr/schema flags, applies global flags, and sets up
// validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			newTldrFlag(),
			newSchemaFlag(),
		}, NewGlobalFlags(qcb.Name)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// ClientAction wraps an action that needs an api.Client.
func ClientAction(fn func(context.Context, *cli.Command, *api.Client) error) func(context.Context, *cli.Command) error {
	return func(ctx context.Context, cmd *cli.Command) error {
		m := GetMeta(cmd)
		log.Debugf("Executing action for %v", m.Args)

		if ShortCircuitTLDR(ctx, cmd, cmd.Name) {
			return nil
		}

		client, closeFn, err := clientFactory()
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(ctx, cmd, client)
	}
}

// renderOptions reads the output flags and applies the timezone config.
func renderOptions(cmd *cli.Command) output.Options {
	if tz, _ := config.GetString("timezone", ""); tz != "" {
		attrs.Timezone = tz
	}
	return output.OptionsFromCommand(cmd)
}
