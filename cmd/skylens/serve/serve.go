// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package serve implements the skylens serve command, the long-running
// language server an editor spawns over stdio.
package serve

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/lsp"
	"github.com/skylens-build/skylens/lib/resolve"
	"github.com/skylens-build/skylens/lib/settings"
	"github.com/skylens-build/skylens/lib/version"
	"github.com/skylens-build/skylens/lib/workspace"
)

// defaultDebounce is the watcher quiet period when neither the flag
// nor a settings file sets one.
const defaultDebounce = 500 * time.Millisecond

// serveParams holds the parameters for the serve command.
type serveParams struct {
	cli.ResolverConfig
	Debounce time.Duration `flag:"debounce" desc:"quiet period after workspace file changes before cached state drops (default 500ms)"`
}

// Command returns the "skylens serve" command.
func Command() *cli.Command {
	var params serveParams

	return &cli.Command{
		Name:    "serve",
		Summary: "Run the language server on stdin/stdout",
		Description: `Run the Starlark language server over stdio, the transport editors use.

The server publishes diagnostics as files are edited and answers
completion, go-to-definition, and hover requests. Label resolution,
external repository locations, and target listings come from the
workspace's own bazel; results are cached on disk keyed by bazel
version so a warm cache survives editor restarts.

Without a bazel binary on PATH the server still runs: syntax and name
diagnostics, main-workspace label resolution, and the builtin rule
catalog all work from the workspace tree alone.

A skylens.json at the workspace root can set per-workspace defaults
(bazel binary, watcher debounce); explicit flags win over it.`,
		Usage: "skylens serve [flags]",
		Examples: []cli.Example{
			{
				Description: "Run the server for an editor session",
				Command:     "skylens serve",
			},
			{
				Description: "Pin the bazel binary instead of searching PATH",
				Command:     "skylens serve --bazel /usr/local/bin/bazelisk",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("serve", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runServer(ctx, params, logger)
		},
	}
}

func runServer(ctx context.Context, params serveParams, logger *slog.Logger) error {
	logger = logger.With("command", "serve")

	global, globalPath, err := settings.Global()
	if err != nil {
		logger.Warn("global settings unreadable", "path", globalPath, "error", err)
	}

	resolver, err := params.NewResolver(logger)
	if err != nil {
		return err
	}

	server, err := lsp.NewServer(lsp.Options{
		Resolver: resolver,
		Logger:   logger,
		Version:  version.Version,
		OnWorkspace: func(root string) {
			debounce := watcherDebounce(params.Debounce, global, root, logger)
			startWatcher(ctx, root, debounce, resolver, logger)
		},
	})
	if err != nil {
		return err
	}

	logger.Info("language server starting", "version", version.Info())
	return server.Serve(ctx)
}

// watcherDebounce picks the quiet period: the --debounce flag, then
// the workspace skylens.json, then the global settings file, then
// the built-in default.
func watcherDebounce(flag time.Duration, global settings.Settings, root string, logger *slog.Logger) time.Duration {
	if flag > 0 {
		return flag
	}
	local, path, err := settings.Workspace(root)
	if err != nil {
		logger.Warn("workspace settings unreadable", "path", path, "error", err)
	}
	if d, err := global.Overlay(local).DebounceDuration(); err != nil {
		logger.Warn("settings debounce invalid", "error", err)
	} else if d > 0 {
		return d
	}
	return defaultDebounce
}

// startWatcher begins watching the announced workspace root so that
// MODULE.bazel, WORKSPACE, .bazelrc, and skylens.json edits drop the
// resolver's cached state. A watcher that cannot start is logged and
// skipped; the server still works, it just holds workspace state
// until restart.
func startWatcher(ctx context.Context, root string, debounce time.Duration, resolver *resolve.Resolver, logger *slog.Logger) {
	watcher, err := workspace.NewWatcher(root, workspace.WatcherOptions{
		Logger:   logger,
		Debounce: debounce,
		OnChange: func() {
			logger.Info("workspace configuration changed", "root", root)
			resolver.Invalidate(root)
		},
	})
	if err != nil {
		logger.Warn("workspace watcher unavailable", "root", root, "error", err)
		return
	}
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("workspace watcher stopped", "root", root, "error", err)
		}
	}()
}
