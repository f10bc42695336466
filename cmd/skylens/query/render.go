// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
)

// renderParams holds the parameters for the render command.
type renderParams struct {
	cli.JSONOutput
	cli.ResolverConfig
	From string `flag:"from" desc:"file the rendered label will be written in"`
}

// renderResult is the JSON shape of the render command output.
type renderResult struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// RenderCommand returns the "skylens render" command.
func RenderCommand() *cli.Command {
	var params renderParams

	return &cli.Command{
		Name:    "render",
		Summary: "Render a file path as the label that loads it",
		Description: `The inverse of resolve: given a file, produce the label that names it
from the point of view of --from. Files in the same package render as
":file", files elsewhere in the main workspace as "//pkg:file", and
files inside a materialized external repository as "@repo//pkg:file".

This is what editor tooling uses to insert load statements; on the
command line it answers "what do I write to load this file from
here".`,
		Usage: "skylens render <path> [flags]",
		Examples: []cli.Example{
			{
				Description: "Render a path for a load statement in lib/BUILD",
				Command:     "skylens render lib/internal/defs.bzl --from lib/BUILD",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("render", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one path argument, got %d", len(args))
			}
			return runRender(ctx, args[0], params, logger)
		},
	}
}

func runRender(ctx context.Context, target string, params renderParams, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	var fromFile string
	if params.From != "" {
		if fromFile, err = filepath.Abs(params.From); err != nil {
			return err
		}
	}
	resolver, err := params.NewResolver(logger)
	if err != nil {
		return err
	}

	label, err := resolver.RenderAsLoad(ctx, absTarget, fromFile)
	if err != nil {
		return cli.NotFound("%v", err)
	}

	result := renderResult{Path: absTarget, Label: label}
	if done, err := params.EmitJSON(result); done {
		return err
	}
	fmt.Println(result.Label)
	return nil
}
