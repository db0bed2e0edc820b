// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/procurectl/internal/aws"
	"github.com/staranto/procurectl/internal/filters"
)

// GlobalFlagsValidator checks flag combinations that no single flag
// validator can see.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.Bool("all") && c.IsSet("page") {
		return errors.New("--all and --page are mutually exclusive")
	}
	for _, e := range filters.BuildExprs(c.String("filter")) {
		if e.Server() && (e.Operand != "=" || e.Negate) {
			return fmt.Errorf("server filter %q only supports =", e.Key)
		}
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	valid := false
	for _, v := range validOutputFlagValues {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

func NonNegativeValidator(value any) error {
	if value.(int) < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

// ExportValidator accepts an empty value or an s3://bucket/key URI.
func ExportValidator(value any) error {
	s := value.(string)
	if s == "" {
		return nil
	}
	_, err := aws.ParseS3URI(s)
	return err
}
