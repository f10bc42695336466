// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/resolve"
)

// resolveParams holds the parameters for the resolve command.
type resolveParams struct {
	cli.JSONOutput
	cli.ResolverConfig
	From string `flag:"from" desc:"file the label appears in (anchors relative labels and repository mappings)"`
}

// resolveResult is the JSON shape of the resolve command output.
type resolveResult struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Rule  string `json:"rule,omitempty"`
}

// ResolveCommand returns the "skylens resolve" command.
func ResolveCommand() *cli.Command {
	var params resolveParams

	return &cli.Command{
		Name:    "resolve",
		Summary: "Resolve a label to the file it names",
		Description: `Resolve a label to a filesystem path, the way go-to-definition does in
the editor: ":defs.bzl" and "//lib:defs.bzl" land on the file,
"@rules_go//go:def.bzl" follows the repository mapping into the
external root, and "//lib:codec" lands on lib's build file with the
target name reported alongside.

Relative labels and apparent repository names depend on where the
label is written; pass --from to anchor them. Without --from the
label is anchored at the current directory.`,
		Usage: "skylens resolve <label> [flags]",
		Examples: []cli.Example{
			{
				Description: "Resolve a main-workspace label",
				Command:     "skylens resolve //lib:defs.bzl",
			},
			{
				Description: "Resolve through the repository mapping of a file",
				Command:     "skylens resolve @rules_go//go:def.bzl --from lib/BUILD",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("resolve", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one label argument, got %d", len(args))
			}
			return runResolve(ctx, args[0], params, logger)
		},
	}
}

func runResolve(ctx context.Context, rawLabel string, params resolveParams, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	fromFile, err := anchorFile(params.From)
	if err != nil {
		return err
	}
	resolver, err := params.NewResolver(logger)
	if err != nil {
		return err
	}

	resolution, err := resolver.ResolveStringLiteral(ctx, rawLabel, fromFile)
	switch {
	case errors.Is(err, resolve.ErrMissingCurrentFile):
		return cli.Validation("%s is a relative label", rawLabel).
			WithHint("Pass --from <file> to anchor it in a package.")
	case errors.Is(err, resolve.ErrMissingWorkspaceRoot),
		errors.Is(err, resolve.ErrUnknownRepository),
		errors.Is(err, resolve.ErrTargetNotFound):
		return cli.NotFound("%v", err)
	case err != nil:
		return err
	}

	result := resolveResult{Label: rawLabel, Path: resolution.Path, Rule: resolution.Rule}
	if done, err := params.EmitJSON(result); done {
		return err
	}

	if result.Rule != "" {
		fmt.Printf("%s (rule %s)\n", result.Path, result.Rule)
		return nil
	}
	fmt.Println(result.Path)
	return nil
}

// anchorFile turns the --from flag into the absolute file path the
// resolver anchors on. An empty flag anchors at a notional build file
// in the current directory, so bare "skylens resolve //lib:defs.bzl"
// works from anywhere inside the workspace.
func anchorFile(from string) (string, error) {
	if from != "" {
		return filepath.Abs(from)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, "BUILD"), nil
}
