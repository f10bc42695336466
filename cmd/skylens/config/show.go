// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
)

// showParams holds the parameters for the config show command.
type showParams struct {
	cli.JSONOutput
	Configs  []string `flag:"config" desc:"named config groups to apply, in order"`
	Platform string   `flag:"platform" desc:"platform config group (default: the host platform)"`
	Bazelrc  string   `flag:"bazelrc" desc:"rc file to read (default: <workspace root>/.bazelrc)"`
}

// ShowCommand returns the "skylens config show" command.
func ShowCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show the effective flags for a bazel command",
		Description: `Compute the flags a bazel command receives from the workspace rc
files: common and always lines, command inheritance (test inherits
build, query inherits common), --config group expansion, and the
platform group applied by --enable_platform_specific_config.

This answers "why is bazel passing that flag" without running bazel.
The platform group defaults to the host platform; pass --platform to
see what CI or another OS would get.`,
		Usage: "skylens config show <command> [flags]",
		Examples: []cli.Example{
			{
				Description: "Flags a plain build receives",
				Command:     "skylens config show build",
			},
			{
				Description: "Flags for a CI test run as Windows would compute them",
				Command:     "skylens config show test --config ci --platform windows",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one bazel command (build, test, query, ...)")
			}
			return runShow(args[0], params)
		},
	}
}

func runShow(command string, params showParams) error {
	root, err := discoverRoot()
	if err != nil {
		return err
	}
	file, err := loadBazelrc(root, params.Bazelrc)
	if err != nil {
		return err
	}

	platform := params.Platform
	if platform == "" {
		platform = hostPlatform()
	}

	flags, err := file.Effective(command, params.Configs, platform)
	if err != nil {
		return cli.Validation("%v", err)
	}

	if done, err := params.EmitJSON(flags); done {
		return err
	}
	for _, flag := range flags {
		fmt.Println(flag)
	}
	return nil
}

// hostPlatform names the platform config group bazel would apply on
// this machine under --enable_platform_specific_config.
func hostPlatform() string {
	if runtime.GOOS == "darwin" {
		return "macos"
	}
	return runtime.GOOS
}
