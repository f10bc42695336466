// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/cache"
)

// RemoveCommand returns the "skylens cache remove" command.
func RemoveCommand() *cli.Command {
	var params diskParams

	return &cli.Command{
		Name:    "remove",
		Summary: "Remove one stored entry",
		Description: `Remove the entry stored as scope/name. Removing an entry that is
already gone is not an error; either way the next process pays one
bazel invocation to recompute whatever the entry held.`,
		Usage: "skylens cache remove <scope> <name> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("remove", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return cli.Validation("expected <scope> <name> arguments, got %d", len(args))
			}
			return runRemove(params, args[0], args[1], logger)
		},
	}
}

func runRemove(params diskParams, scope, name string, logger *slog.Logger) error {
	key, err := cache.ParseKey(name)
	if err != nil {
		return cli.Validation("%v", err).
			WithHint("Entry names are the 64 hex characters 'skylens cache list' prints.")
	}
	disk, err := params.open(logger)
	if err != nil {
		return err
	}
	if err := disk.Delete(scope, key); err != nil {
		return err
	}
	fmt.Printf("removed %s/%s\n", scope, name)
	return nil
}

// ClearCommand returns the "skylens cache clear" command.
func ClearCommand() *cli.Command {
	var params diskParams

	return &cli.Command{
		Name:    "clear",
		Summary: "Remove every stored entry",
		Usage:   "skylens cache clear [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("clear", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runClear(params, logger)
		},
	}
}

func runClear(params diskParams, logger *slog.Logger) error {
	disk, err := params.open(logger)
	if err != nil {
		return err
	}
	entries, err := disk.Entries()
	if err != nil {
		return err
	}
	if err := disk.Clear(); err != nil {
		return err
	}
	logger.Info("cleared resolution cache", "dir", disk.Dir(), "entries", len(entries))
	fmt.Printf("cleared %s: %d entries\n", disk.Dir(), len(entries))
	return nil
}
