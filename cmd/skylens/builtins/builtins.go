// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package builtins implements the skylens builtins commands for
// inspecting and regenerating the builtin rule catalog.
package builtins

import (
	"github.com/skylens-build/skylens/cmd/skylens/cli"
)

// Command returns the "skylens builtins" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "builtins",
		Summary: "Inspect and regenerate the builtin rule catalog",
		Description: `The resolver documents bazel's builtin rules and globals from a
catalog: a live build-language dump from the workspace's bazel when
available, the snapshot shipped inside the binary otherwise.

show looks a name up the way hover does in the editor; snapshot dumps
the live build language in the snapshot format, which is how the
shipped copy gets refreshed when a new bazel version lands.`,
		Subcommands: []*cli.Command{
			ShowCommand(),
			SnapshotCommand(),
		},
	}
}
