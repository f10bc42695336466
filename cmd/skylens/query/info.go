// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package query implements the one-shot commands that expose the
// resolver from the command line: info, resolve, and render. They
// answer the same questions the language server answers for editors,
// in a form scripts and curious humans can use directly.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/workspace"
)

// commandTimeout bounds the bazel invocations behind a one-shot
// command. A cold "bazel info" can start a server; anything beyond
// this is a wedged workspace the user should look at directly.
const commandTimeout = 30 * time.Second

// infoParams holds the parameters for the info command.
type infoParams struct {
	cli.JSONOutput
	cli.ResolverConfig
}

// infoResult is the JSON shape of the info command output.
type infoResult struct {
	Root          string   `json:"root"`
	WorkspaceName string   `json:"workspace_name,omitempty"`
	OutputBase    string   `json:"output_base"`
	ExecutionRoot string   `json:"execution_root"`
	ExternalRoot  string   `json:"external_root"`
	Release       string   `json:"release,omitempty"`
	Repositories  []string `json:"repositories"`
}

// InfoCommand returns the "skylens info" command.
func InfoCommand() *cli.Command {
	var params infoParams

	return &cli.Command{
		Name:    "info",
		Summary: "Show workspace layout as bazel sees it",
		Description: `Discover the workspace above a directory and report its layout: root,
canonical name, output base, execution root, and the external
repositories that have materialized on disk.

This is the same information the language server uses to resolve
@repo//... labels, so when a label misbehaves in the editor, info
shows what the resolver is working from.`,
		Usage: "skylens info [directory] [flags]",
		Examples: []cli.Example{
			{
				Description: "Inspect the workspace above the current directory",
				Command:     "skylens info",
			},
			{
				Description: "Machine-readable output",
				Command:     "skylens info --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("info", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("expected at most one directory argument, got %d", len(args))
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInfo(ctx, dir, params, logger)
		},
	}
}

func runInfo(ctx context.Context, dir string, params infoParams, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	root, err := workspace.DiscoverRoot(absDir)
	if errors.Is(err, workspace.ErrNoRoot) {
		return cli.NotFound("no bazel workspace above %s", absDir)
	}
	if err != nil {
		return err
	}

	ws, err := workspace.NewCache(params.Runner(logger)).Get(ctx, root)
	if err != nil {
		return fmt.Errorf("describe workspace %s: %w", root, err)
	}
	repositories, err := ws.RepositoryNames()
	if err != nil {
		logger.Warn("listing external repositories failed", "error", err)
	}

	result := infoResult{
		Root:          ws.Root,
		WorkspaceName: ws.Name(),
		OutputBase:    ws.OutputBase,
		ExecutionRoot: ws.ExecutionRoot,
		ExternalRoot:  ws.ExternalRoot(),
		Release:       ws.Release,
		Repositories:  repositories,
	}
	if result.Repositories == nil {
		result.Repositories = []string{}
	}

	if done, err := params.EmitJSON(result); done {
		return err
	}

	fmt.Printf("root:            %s\n", result.Root)
	if result.WorkspaceName != "" {
		fmt.Printf("workspace name:  %s\n", result.WorkspaceName)
	}
	fmt.Printf("output base:     %s\n", result.OutputBase)
	fmt.Printf("execution root:  %s\n", result.ExecutionRoot)
	fmt.Printf("external root:   %s\n", result.ExternalRoot)
	if result.Release != "" {
		fmt.Printf("bazel release:   %s\n", result.Release)
	}
	fmt.Printf("repositories:    %d materialized\n", len(result.Repositories))
	for _, repo := range result.Repositories {
		fmt.Printf("  @%s\n", repo)
	}
	return nil
}
