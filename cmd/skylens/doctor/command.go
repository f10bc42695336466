// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor implements the skylens doctor command for diagnosing
// the tool's environment.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/cmd/skylens/cli/doctor"
	"github.com/skylens-build/skylens/lib/bazel"
	"github.com/skylens-build/skylens/lib/bazelrc"
	"github.com/skylens-build/skylens/lib/cache"
	"github.com/skylens-build/skylens/lib/settings"
	"github.com/skylens-build/skylens/lib/workspace"
)

// commandParams holds the parameters for the doctor command.
type commandParams struct {
	cli.JSONOutput
	cli.ResolverConfig
}

// Command returns the "skylens doctor" command.
func Command() *cli.Command {
	var params commandParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Diagnose the environment the language server runs in",
		Description: `Check everything the language server depends on: a bazel binary, a
workspace above the current directory, a responsive "bazel info", a
parseable .bazelrc with a consistent --deleted_packages pair, the
skylens settings files, and a writable resolution cache.

When completion or go-to-definition misbehaves in the editor, this is
the place to start. Checks are read-only; each failure comes with the
command or action that fixes it.`,
		Usage: "skylens doctor [flags]",
		Examples: []cli.Example{
			{
				Description: "Check the environment",
				Command:     "skylens doctor",
			},
			{
				Description: "Machine-readable output",
				Command:     "skylens doctor --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("doctor", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			return runDoctor(ctx, params, logger)
		},
	}
}

// checkState carries discovered state across checks so later checks
// build on earlier ones instead of repeating work.
type checkState struct {
	// binary is the bazel binary path, when one was found.
	binary string

	// root is the workspace root, when one was discovered.
	root string
}

func runDoctor(ctx context.Context, params commandParams, logger *slog.Logger) error {
	var state checkState
	var results []doctor.Result

	results = append(results, checkBazelBinary(&state, params.Bazel))
	results = append(results, checkWorkspace(&state))
	results = append(results, checkBazelInfo(ctx, &state))
	results = append(results, checkBazelrc(&state)...)
	results = append(results, checkSettings(&state)...)
	results = append(results, checkCache(params.CacheDir, logger))

	output := doctor.BuildJSON(results)
	if done, err := params.EmitJSON(output); done {
		if err != nil {
			return err
		}
		if !output.OK {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}
	return doctor.PrintChecklist(results)
}

// checkBazelBinary locates bazel, honoring the --bazel override.
func checkBazelBinary(state *checkState, override string) doctor.Result {
	if override != "" {
		path, err := exec.LookPath(override)
		if err != nil {
			return doctor.FailWithHint("bazel binary",
				fmt.Sprintf("--bazel %s is not executable", override),
				"pass a bazel or bazelisk binary")
		}
		state.binary = path
		return doctor.Pass("bazel binary", path)
	}

	path, err := bazel.FindBinary()
	if err != nil {
		return doctor.FailWithHint("bazel binary", "not found on PATH",
			"install bazel or bazelisk (https://bazel.build/install)")
	}
	state.binary = path
	return doctor.Pass("bazel binary", path)
}

// checkWorkspace discovers the workspace above the current directory.
func checkWorkspace(state *checkState) doctor.Result {
	cwd, err := os.Getwd()
	if err != nil {
		return doctor.Fail("workspace", err.Error())
	}
	root, err := workspace.DiscoverRoot(cwd)
	if errors.Is(err, workspace.ErrNoRoot) {
		return doctor.FailWithHint("workspace",
			fmt.Sprintf("no bazel workspace above %s", cwd),
			"run inside a directory below MODULE.bazel or WORKSPACE")
	}
	if err != nil {
		return doctor.Fail("workspace", err.Error())
	}
	state.root = root
	return doctor.Pass("workspace", root)
}

// checkBazelInfo asks the discovered bazel about the discovered
// workspace. This is the expensive check: a cold bazel starts a
// server.
func checkBazelInfo(ctx context.Context, state *checkState) doctor.Result {
	if state.binary == "" || state.root == "" {
		return doctor.Skip("bazel info", "needs a bazel binary and a workspace")
	}
	client, err := bazel.NewClient(bazel.Options{Binary: state.binary})
	if err != nil {
		return doctor.Fail("bazel info", err.Error())
	}
	ws, err := workspace.NewCache(client).Get(ctx, state.root)
	if err != nil {
		return doctor.FailWithHint("bazel info", err.Error(),
			"run 'bazel info' by hand; a concurrent build may hold the workspace lock")
	}
	message := ws.Release
	if message == "" {
		message = "responding"
	}
	if name := ws.Name(); name != "" {
		message = fmt.Sprintf("%s, workspace %q", message, name)
	}
	return doctor.Pass("bazel info", message)
}

// checkBazelrc parses the workspace rc file and verifies the
// deleted-packages directive pair agrees.
func checkBazelrc(state *checkState) []doctor.Result {
	if state.root == "" {
		return []doctor.Result{doctor.Skip("bazelrc", "needs a workspace")}
	}
	rcPath := filepath.Join(state.root, ".bazelrc")
	file, err := bazelrc.Load(rcPath, state.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []doctor.Result{doctor.Warn("bazelrc", "no .bazelrc at the workspace root")}
		}
		return []doctor.Result{doctor.Fail("bazelrc", err.Error())}
	}

	results := []doctor.Result{
		doctor.Pass("bazelrc", fmt.Sprintf("%d directive(s)", len(file.Lines))),
	}

	packages, err := file.DeletedPackages()
	switch {
	case err != nil:
		results = append(results, doctor.FailWithHint("deleted packages", err.Error(),
			"run 'skylens config deleted-packages update'"))
	case packages == nil:
		results = append(results, doctor.Skip("deleted packages", "no directive in the rc file"))
	default:
		results = append(results, doctor.Pass("deleted packages",
			fmt.Sprintf("%d package(s), build and query agree", len(packages))))
	}
	return results
}

// checkSettings loads skylens's own configuration files, the global
// YAML and the workspace skylens.json.
func checkSettings(state *checkState) []doctor.Result {
	var results []doctor.Result

	global, globalPath, err := settings.Global()
	switch {
	case err != nil:
		results = append(results, doctor.FailWithHint("global settings", err.Error(),
			"fix or remove the file; skylens runs fine without it"))
	case globalPath == "" || !fileExists(globalPath):
		results = append(results, doctor.Pass("global settings", "not present, defaults apply"))
	default:
		if _, err := global.DebounceDuration(); err != nil {
			results = append(results, doctor.Fail("global settings",
				fmt.Sprintf("%s: %v", globalPath, err)))
		} else {
			results = append(results, doctor.Pass("global settings", globalPath))
		}
	}

	if state.root == "" {
		results = append(results, doctor.Skip("workspace settings", "needs a workspace"))
		return results
	}
	local, localPath, err := settings.Workspace(state.root)
	switch {
	case err != nil:
		results = append(results, doctor.FailWithHint("workspace settings", err.Error(),
			"fix or remove skylens.json"))
	case !fileExists(localPath):
		results = append(results, doctor.Skip("workspace settings", "no skylens.json at the root"))
	default:
		if _, err := local.DebounceDuration(); err != nil {
			results = append(results, doctor.Fail("workspace settings",
				fmt.Sprintf("%s: %v", localPath, err)))
		} else {
			results = append(results, doctor.Pass("workspace settings", localPath))
		}
	}
	return results
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// checkCache opens the resolution cache the way serve would: the
// --cache-dir flag, the global settings, or the default directory.
func checkCache(dir string, logger *slog.Logger) doctor.Result {
	if dir == "" {
		global, _, _ := settings.Global()
		dir = global.CacheDir
	}
	disk, err := cache.Open(cache.Options{Dir: dir, Logger: logger})
	if err != nil {
		return doctor.Warn("resolution cache", err.Error())
	}
	entries, err := disk.Entries()
	if err != nil {
		return doctor.Warn("resolution cache", fmt.Sprintf("%s: %v", disk.Dir(), err))
	}
	return doctor.Pass("resolution cache", fmt.Sprintf("%s, %d entries", disk.Dir(), len(entries)))
}
