// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package bazel provides typed access to the Bazel CLI. It centralizes
// binary resolution (bazel from PATH, then bazelisk) and provides
// uniform error formatting across all bazel invocations.
//
// Skylens talks to Bazel for four things:
//   - info: workspace layout (output base, execution root, release)
//   - query: buildable target names for completion
//   - mod dump_repo_mapping: apparent-to-canonical repository names
//   - info build-language: the rule and attribute catalog
//
// All of them run inside a workspace directory and are read-only from
// Bazel's point of view, but they still take the workspace lock. The
// OutputBase option points queries at a separate output base so that a
// long-running build does not stall the language service.
package bazel

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// binaryNames are tried in order when no explicit path is configured.
// bazelisk is the common indirection on developer machines that pin
// Bazel versions per workspace.
var binaryNames = []string{"bazel", "bazelisk"}

// FindBinary resolves the bazel binary from PATH, preferring a real
// bazel over bazelisk. Returns the absolute path to the binary.
func FindBinary() (string, error) {
	for _, name := range binaryNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("neither bazel nor bazelisk found on PATH")
}

// Options configures a Client.
type Options struct {
	// Binary is the path to the bazel binary. Empty means resolve from
	// PATH via FindBinary.
	Binary string

	// OutputBase, when set, is passed as --output_base on query
	// invocations. Queries then use their own output base instead of
	// contending for the workspace lock with regular builds.
	OutputBase string
}

// Client invokes the Bazel CLI inside workspace directories. It
// implements Runner. Client is safe for concurrent use: it holds no
// mutable state, each call spawns its own process.
type Client struct {
	binary     string
	outputBase string
}

// NewClient resolves the bazel binary and returns a Client. The binary
// is resolved once, eagerly, so that a missing installation surfaces
// at startup rather than on the first query.
func NewClient(opts Options) (*Client, error) {
	binary := opts.Binary
	if binary == "" {
		found, err := FindBinary()
		if err != nil {
			return nil, err
		}
		binary = found
	}
	return &Client{binary: binary, outputBase: opts.OutputBase}, nil
}

// Binary returns the resolved path of the bazel binary.
func (c *Client) Binary() string { return c.binary }

// Info runs "bazel info" in workspaceDir and returns the parsed
// key-value output.
func (c *Client) Info(ctx context.Context, workspaceDir string) (map[string]string, error) {
	output, err := c.run(ctx, workspaceDir, nil, "info")
	if err != nil {
		return nil, err
	}
	return ParseInfo(string(output)), nil
}

// Query runs "bazel query <pattern>" in workspaceDir and returns the
// resulting labels, one per output line. The query uses the configured
// query output base when one is set.
func (c *Client) Query(ctx context.Context, workspaceDir, pattern string) ([]string, error) {
	var startup []string
	if c.outputBase != "" {
		startup = append(startup, "--output_base="+c.outputBase)
	}
	output, err := c.run(ctx, workspaceDir, startup, "query", pattern)
	if err != nil {
		return nil, err
	}
	var labels []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			labels = append(labels, line)
		}
	}
	return labels, nil
}

// DumpRepoMapping runs "bazel mod dump_repo_mapping <repo>" and
// returns the apparent-to-canonical repository name mapping as seen
// from the given repository. The empty string names the main
// repository.
func (c *Client) DumpRepoMapping(ctx context.Context, workspaceDir, repo string) (map[string]string, error) {
	output, err := c.run(ctx, workspaceDir, nil, "mod", "dump_repo_mapping", repo)
	if err != nil {
		return nil, err
	}
	return parseRepoMapping(output)
}

// BuildLanguage runs "bazel info build-language" and returns the raw
// serialized BuildLanguage protobuf describing every rule and
// attribute this Bazel version understands.
func (c *Client) BuildLanguage(ctx context.Context, workspaceDir string) ([]byte, error) {
	return c.run(ctx, workspaceDir, nil, "info", "build-language")
}

// run executes the bazel binary with the given startup flags and
// command arguments, in workspaceDir, and returns stdout. Stderr is
// captured separately and included in error messages (bazel writes all
// diagnostics to stderr, including the INFO chatter).
func (c *Client) run(ctx context.Context, workspaceDir string, startup []string, args ...string) ([]byte, error) {
	full := append(append([]string{}, startup...), args...)

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, c.binary, full...)
	command.Dir = workspaceDir
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return nil, formatError(full, &stderr, err)
	}
	return stdout.Bytes(), nil
}

// ParseInfo parses "bazel info" output into a key-value map. Each line
// has the form "key: value"; lines without a colon are skipped (bazel
// prints warnings to stderr, but be tolerant anyway).
func ParseInfo(output string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return info
}

// formatError produces an error message for a failed bazel command,
// preferring stderr output (which contains the actual bazel error)
// over the generic exec error. Bazel stderr includes INFO and loading
// progress lines; only the tail carries the failure, so the last lines
// are kept when the output is long.
func formatError(args []string, stderr *bytes.Buffer, err error) error {
	commandString := "bazel " + strings.Join(args, " ")
	stderrText := strings.TrimSpace(stderr.String())
	if stderrText == "" {
		return fmt.Errorf("%s: %w", commandString, err)
	}
	lines := strings.Split(stderrText, "\n")
	if len(lines) > 10 {
		lines = lines[len(lines)-10:]
	}
	return fmt.Errorf("%s: %s", commandString, strings.Join(lines, "\n"))
}
