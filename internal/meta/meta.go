// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/procurectl/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// Namespace is the config namespace, normally the subcommand name.
	Namespace string
}

// Subcommand is the command being run, or "" when only flags were given.
func (m Meta) Subcommand() string {
	if len(m.Args) > 1 {
		return m.Args[1]
	}
	return ""
}
