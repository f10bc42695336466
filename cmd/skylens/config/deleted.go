// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/bazelrc"
)

// DeletedPackagesCommand returns the "skylens config deleted-packages"
// command group.
func DeletedPackagesCommand() *cli.Command {
	return &cli.Command{
		Name:    "deleted-packages",
		Summary: "Maintain the --deleted_packages directive pair",
		Description: `Workspaces with nested test-fixture workspaces must hide the
fixtures' packages from bazel via --deleted_packages, and the
directive has to be stated twice with identical values: once on a
build line and once on a query line, because query does not inherit
build options.

list prints the current (consistent) value; update rescans the tree
for nested-workspace packages and rewrites both lines in place,
leaving the rest of the rc file byte for byte as it was.`,
		Subcommands: []*cli.Command{
			deletedListCommand(),
			deletedUpdateCommand(),
		},
	}
}

// deletedListParams holds the parameters for the list subcommand.
type deletedListParams struct {
	cli.JSONOutput
	Bazelrc string `flag:"bazelrc" desc:"rc file to read (default: <workspace root>/.bazelrc)"`
}

func deletedListCommand() *cli.Command {
	var params deletedListParams

	return &cli.Command{
		Name:    "list",
		Summary: "Print the deleted packages, verifying build and query agree",
		Usage:   "skylens config deleted-packages list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runDeletedList(params)
		},
	}
}

func runDeletedList(params deletedListParams) error {
	root, err := discoverRoot()
	if err != nil {
		return err
	}
	file, err := loadBazelrc(root, params.Bazelrc)
	if err != nil {
		return err
	}

	packages, err := file.DeletedPackages()
	if err != nil {
		return cli.Validation("%v", err).
			WithHint("Run 'skylens config deleted-packages update' to rewrite both lines.")
	}

	if done, err := params.EmitJSON(packages); done {
		return err
	}
	for _, pkg := range packages {
		fmt.Println(pkg)
	}
	return nil
}

// deletedUpdateParams holds the parameters for the update subcommand.
type deletedUpdateParams struct {
	DryRun  bool   `flag:"dry-run" desc:"print the packages that would be written without touching the file"`
	Bazelrc string `flag:"bazelrc" desc:"rc file to rewrite (default: <workspace root>/.bazelrc)"`
}

func deletedUpdateCommand() *cli.Command {
	var params deletedUpdateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Rescan for nested workspaces and rewrite both directive lines",
		Usage:   "skylens config deleted-packages update [flags]",
		Examples: []cli.Example{
			{
				Description: "See what a rescan would write",
				Command:     "skylens config deleted-packages update --dry-run",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("update", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runDeletedUpdate(params, logger)
		},
	}
}

func runDeletedUpdate(params deletedUpdateParams, logger *slog.Logger) error {
	root, err := discoverRoot()
	if err != nil {
		return err
	}
	packages, err := bazelrc.ScanFixturePackages(root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	rcPath := params.Bazelrc
	if rcPath == "" {
		rcPath = filepath.Join(root, ".bazelrc")
	}

	for _, pkg := range packages {
		fmt.Println(pkg)
	}
	if params.DryRun {
		fmt.Printf("dry run: %d package(s), %s not written\n", len(packages), rcPath)
		return nil
	}

	if err := bazelrc.UpdateDeletedPackages(rcPath, packages); err != nil {
		return err
	}
	logger.Info("rewrote deleted packages", "file", rcPath, "packages", len(packages))
	fmt.Printf("updated %s: %d package(s) on the build and query lines\n", rcPath, len(packages))
	return nil
}
