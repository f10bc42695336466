// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package config implements the skylens config commands: computing
// the effective flag set a bazel command would receive from the
// workspace's rc files, and maintaining the --deleted_packages
// directive pair.
package config

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/bazelrc"
	"github.com/skylens-build/skylens/lib/workspace"
)

// Command returns the "skylens config" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Summary: "Inspect and maintain bazel rc configuration",
		Subcommands: []*cli.Command{
			ShowCommand(),
			DeletedPackagesCommand(),
		},
	}
}

// discoverRoot finds the workspace root above the current directory,
// mapping the no-workspace case to a not-found command error.
func discoverRoot() (string, error) {
	root, err := workspace.DiscoverRoot(".")
	if errors.Is(err, workspace.ErrNoRoot) {
		return "", cli.NotFound("no bazel workspace above the current directory").
			WithHint("Run inside a directory below MODULE.bazel or WORKSPACE.")
	}
	if err != nil {
		return "", err
	}
	return root, nil
}

// loadBazelrc reads the workspace's rc file. rcPath overrides the
// default <root>/.bazelrc. A missing default rc file is an empty
// configuration, matching bazel; a missing explicit --bazelrc is an
// error, also matching bazel.
func loadBazelrc(root, rcPath string) (*bazelrc.File, error) {
	explicit := rcPath != ""
	if !explicit {
		rcPath = filepath.Join(root, ".bazelrc")
	}
	file, err := bazelrc.Load(rcPath, root)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &bazelrc.File{Path: rcPath}, nil
		}
		return nil, err
	}
	return file, nil
}
