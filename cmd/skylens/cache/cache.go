// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache implements the skylens cache commands for inspecting
// and pruning the on-disk resolution cache.
package cache

import (
	"log/slog"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/cache"
	"github.com/skylens-build/skylens/lib/settings"
)

// Command returns the "skylens cache" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Summary: "Inspect and prune the on-disk resolution cache",
		Description: `The resolver keeps bazel-derived answers that are expensive to
recompute (the build-language dump, external repository mappings) in
an on-disk cache shared between processes. Keys rotate with the bazel
version and entries expire on their own, so the cache needs no
routine care; these commands exist for looking inside it and for
forcing a cold start when staleness is suspected.`,
		Subcommands: []*cli.Command{
			ListCommand(),
			ShowCommand(),
			RemoveCommand(),
			ClearCommand(),
		},
	}
}

// diskParams locate the cache directory. Every subcommand carries
// them; an empty flag falls back to the global settings file and then
// the per-user default, the same chain the resolver-backed commands
// walk.
type diskParams struct {
	CacheDir string `flag:"cache-dir" desc:"cache directory (default: global settings, then the user cache dir)"`
}

func (p diskParams) open(logger *slog.Logger) (*cache.Cache, error) {
	dir := p.CacheDir
	if dir == "" {
		global, _, _ := settings.Global()
		dir = global.CacheDir
	}
	return cache.Open(cache.Options{Dir: dir, Logger: logger})
}
