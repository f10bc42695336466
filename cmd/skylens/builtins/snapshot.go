// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/renameio/v2"
	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/bazel"
	"github.com/skylens-build/skylens/lib/builtins"
	"github.com/skylens-build/skylens/lib/workspace"
)

// snapshotParams holds the parameters for the builtins snapshot command.
type snapshotParams struct {
	Bazel string `flag:"bazel" desc:"bazel binary to invoke (default: bazel or bazelisk from PATH)"`
	Out   string `flag:"out,o" desc:"file to write the snapshot to (default: stdout)"`
}

// SnapshotCommand returns the "skylens builtins snapshot" command.
func SnapshotCommand() *cli.Command {
	var params snapshotParams

	return &cli.Command{
		Name:    "snapshot",
		Summary: "Dump the live build language in the snapshot format",
		Description: `Run "bazel info build-language" in the surrounding workspace and
print the decoded rule catalog as the JSON snapshot format the binary
embeds. Refreshing the shipped snapshot after a bazel upgrade is:

  skylens builtins snapshot --out lib/builtins/rules.json

Unlike the other commands this one requires a working bazel; the
snapshot exists precisely to cover the machines that do not have
one.`,
		Usage: "skylens builtins snapshot [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("snapshot", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runSnapshot(ctx, params, logger)
		},
	}
}

func runSnapshot(ctx context.Context, params snapshotParams, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	client, err := bazel.NewClient(bazel.Options{Binary: params.Bazel})
	if err != nil {
		return cli.NotFound("%v", err).WithHint("Install bazel or pass --bazel.")
	}
	root, err := workspace.DiscoverRoot(".")
	if errors.Is(err, workspace.ErrNoRoot) {
		return cli.NotFound("no bazel workspace above the current directory")
	}
	if err != nil {
		return err
	}

	raw, err := client.BuildLanguage(ctx, root)
	if err != nil {
		return fmt.Errorf("dump build language: %w", err)
	}
	rules, err := builtins.DecodeBuildLanguage(raw)
	if err != nil {
		return err
	}
	encoded, err := builtins.EncodeRules(rules)
	if err != nil {
		return err
	}

	if params.Out == "" {
		_, err := os.Stdout.Write(encoded)
		return err
	}
	if err := renameio.WriteFile(params.Out, encoded, 0o644); err != nil {
		return err
	}
	logger.Info("wrote builtins snapshot", "file", params.Out, "rules", len(rules))
	return nil
}
