// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
)

// testParams points the resolver at a binary that does not exist and a
// throwaway cache dir, so tests never invoke a real bazel and never
// touch the user's cache.
func testParams(t *testing.T) lintParams {
	t.Helper()
	var params lintParams
	params.Bazel = filepath.Join(t.TempDir(), "no-bazel")
	params.CacheDir = t.TempDir()
	return params
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunLintMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "BUILD")

	err := runLint(context.Background(), []string{missing}, testParams(t), discardLogger())

	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != cli.CategoryNotFound {
		t.Fatalf("error = %v, want a not-found tool error", err)
	}
}

func TestRunLintCleanFile(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "MODULE.bazel"), "module(name = \"demo\")\n")
	path := filepath.Join(root, "BUILD")
	mustWrite(t, path, "")

	if err := runLint(context.Background(), []string{path}, testParams(t), discardLogger()); err != nil {
		t.Fatalf("runLint: %v", err)
	}
}

func TestRunLintSyntaxErrorExitsNonZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BUILD")
	mustWrite(t, path, "cc_library(\n")

	err := runLint(context.Background(), []string{path}, testParams(t), discardLogger())

	var exit *cli.ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("error = %v, want exit code 1", err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
