// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete skylens CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	builtinscmd "github.com/skylens-build/skylens/cmd/skylens/builtins"
	cachecmd "github.com/skylens-build/skylens/cmd/skylens/cache"
	"github.com/skylens-build/skylens/cmd/skylens/cli"
	configcmd "github.com/skylens-build/skylens/cmd/skylens/config"
	doctorcmd "github.com/skylens-build/skylens/cmd/skylens/doctor"
	lintcmd "github.com/skylens-build/skylens/cmd/skylens/lint"
	"github.com/skylens-build/skylens/cmd/skylens/query"
	servecmd "github.com/skylens-build/skylens/cmd/skylens/serve"
	"github.com/skylens-build/skylens/lib/version"
)

// Root builds and returns the complete skylens CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "skylens",
		Description: `Skylens: language service for bazel workspaces.

Starlark diagnostics, label-aware completion, go-to-definition, and
hover documentation, answered from the workspace's own bazel. The
serve command speaks the Language Server Protocol for editors; the
rest expose the same machinery for scripts and debugging.`,
		Subcommands: []*cli.Command{
			servecmd.Command(),
			query.InfoCommand(),
			query.ResolveCommand(),
			query.RenderCommand(),
			lintcmd.Command(),
			configcmd.Command(),
			builtinscmd.Command(),
			cachecmd.Command(),
			doctorcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("skylens %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Diagnose the environment (start here when lost)",
				Command:     "skylens doctor",
			},
			{
				Description: "Run the language server for an editor",
				Command:     "skylens serve",
			},
			{
				Description: "Resolve a label the way go-to-definition would",
				Command:     "skylens resolve @rules_go//go:def.bzl --from BUILD",
			},
			{
				Description: "Lint build files in CI",
				Command:     "skylens lint $(git ls-files '*.bzl' 'BUILD*')",
			},
		},
	}
}
