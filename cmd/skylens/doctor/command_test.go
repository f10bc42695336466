// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skylens-build/skylens/cmd/skylens/cli/doctor"
)

// --- Bazel binary tests ---

func TestCheckBazelBinary_OverrideNotExecutable(t *testing.T) {
	var state checkState
	result := checkBazelBinary(&state, filepath.Join(t.TempDir(), "nonexistent"))

	if result.Status != doctor.StatusFail {
		t.Errorf("expected FAIL, got %s: %s", result.Status, result.Message)
	}
	if state.binary != "" {
		t.Errorf("expected empty state.binary, got %q", state.binary)
	}
}

func TestCheckBazelBinary_OverrideExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bazel")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	var state checkState
	result := checkBazelBinary(&state, path)

	if result.Status != doctor.StatusPass {
		t.Errorf("expected PASS, got %s: %s", result.Status, result.Message)
	}
	if state.binary != path {
		t.Errorf("expected state.binary %q, got %q", path, state.binary)
	}
}

func TestCheckBazelBinary_NotOnPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	var state checkState
	result := checkBazelBinary(&state, "")

	if result.Status != doctor.StatusFail {
		t.Errorf("expected FAIL, got %s: %s", result.Status, result.Message)
	}
	if !strings.Contains(result.Hint, "bazel.build/install") {
		t.Errorf("expected install hint, got %q", result.Hint)
	}
}

func TestCheckBazelBinary_FoundOnPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bazel")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	var state checkState
	result := checkBazelBinary(&state, "")

	if result.Status != doctor.StatusPass {
		t.Errorf("expected PASS, got %s: %s", result.Status, result.Message)
	}
	if state.binary != path {
		t.Errorf("expected state.binary %q, got %q", path, state.binary)
	}
}

// --- Workspace tests ---

func TestCheckWorkspace_Found(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "MODULE.bazel"), []byte(`module(name = "demo")`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	// t.Chdir may land on a symlink-resolved path; compare against the
	// working directory the check itself will see.
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	var state checkState
	result := checkWorkspace(&state)

	if result.Status != doctor.StatusPass {
		t.Errorf("expected PASS, got %s: %s", result.Status, result.Message)
	}
	if state.root != cwd {
		t.Errorf("expected state.root %q, got %q", cwd, state.root)
	}
}

func TestCheckWorkspace_NotFound(t *testing.T) {
	chdir(t, t.TempDir())

	var state checkState
	result := checkWorkspace(&state)

	if result.Status != doctor.StatusFail {
		t.Errorf("expected FAIL, got %s: %s", result.Status, result.Message)
	}
	if !strings.Contains(result.Hint, "MODULE.bazel") {
		t.Errorf("expected hint mentioning MODULE.bazel, got %q", result.Hint)
	}
	if state.root != "" {
		t.Errorf("expected empty state.root, got %q", state.root)
	}
}

// --- Bazel info tests ---

func TestCheckBazelInfo_SkipsWithoutPrerequisites(t *testing.T) {
	tests := []struct {
		name  string
		state checkState
	}{
		{"no binary no root", checkState{}},
		{"binary only", checkState{binary: "/usr/bin/bazel"}},
		{"root only", checkState{root: "/workspace"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := checkBazelInfo(context.Background(), &test.state)
			if result.Status != doctor.StatusSkip {
				t.Errorf("expected SKIP, got %s: %s", result.Status, result.Message)
			}
		})
	}
}

// --- Bazelrc tests ---

func TestCheckBazelrc_NoWorkspace(t *testing.T) {
	var state checkState
	results := checkBazelrc(&state)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Status != doctor.StatusSkip {
		t.Errorf("expected SKIP, got %s", results[0].Status)
	}
}

func TestCheckBazelrc_MissingFile(t *testing.T) {
	state := checkState{root: t.TempDir()}
	results := checkBazelrc(&state)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Status != doctor.StatusWarn {
		t.Errorf("expected WARN for missing .bazelrc, got %s: %s", results[0].Status, results[0].Message)
	}
}

func TestCheckBazelrc_CountsDirectives(t *testing.T) {
	root := t.TempDir()
	content := `# workspace defaults
build --verbose_failures

test --test_output=errors
`
	if err := os.WriteFile(filepath.Join(root, ".bazelrc"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	state := checkState{root: root}
	results := checkBazelrc(&state)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != doctor.StatusPass {
		t.Errorf("expected PASS, got %s: %s", results[0].Status, results[0].Message)
	}
	if !strings.Contains(results[0].Message, "2 directive(s)") {
		t.Errorf("expected directive count in message, got %q", results[0].Message)
	}
	// No --deleted_packages directive at all.
	if results[1].Status != doctor.StatusSkip {
		t.Errorf("expected SKIP for deleted packages, got %s: %s", results[1].Status, results[1].Message)
	}
}

func TestCheckBazelrc_DeletedPackagesAgree(t *testing.T) {
	root := t.TempDir()
	content := `build --deleted_packages=fixtures/simple,fixtures/nested/pkg
query --deleted_packages=fixtures/simple,fixtures/nested/pkg
`
	if err := os.WriteFile(filepath.Join(root, ".bazelrc"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	state := checkState{root: root}
	results := checkBazelrc(&state)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != doctor.StatusPass {
		t.Errorf("expected PASS, got %s: %s", results[1].Status, results[1].Message)
	}
	if !strings.Contains(results[1].Message, "2 package(s)") {
		t.Errorf("expected package count in message, got %q", results[1].Message)
	}
}

func TestCheckBazelrc_DeletedPackagesDiverged(t *testing.T) {
	root := t.TempDir()
	content := `build --deleted_packages=fixtures/simple,fixtures/extra
query --deleted_packages=fixtures/simple
`
	if err := os.WriteFile(filepath.Join(root, ".bazelrc"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	state := checkState{root: root}
	results := checkBazelrc(&state)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != doctor.StatusFail {
		t.Errorf("expected FAIL for diverged lists, got %s: %s", results[1].Status, results[1].Message)
	}
	if !strings.Contains(results[1].Hint, "skylens config deleted-packages update") {
		t.Errorf("expected update hint, got %q", results[1].Hint)
	}
}

func TestCheckBazelrc_DeletedPackagesMissingQueryLine(t *testing.T) {
	root := t.TempDir()
	content := "build --deleted_packages=fixtures/simple\n"
	if err := os.WriteFile(filepath.Join(root, ".bazelrc"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	state := checkState{root: root}
	results := checkBazelrc(&state)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != doctor.StatusFail {
		t.Errorf("expected FAIL for missing query line, got %s: %s", results[1].Status, results[1].Message)
	}
	if !strings.Contains(results[1].Message, "query") {
		t.Errorf("expected message naming the query line, got %q", results[1].Message)
	}
}

func TestCheckBazelrc_Unparseable(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".bazelrc"), []byte(`build "unterminated`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := checkState{root: root}
	results := checkBazelrc(&state)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Status != doctor.StatusFail {
		t.Errorf("expected FAIL for parse error, got %s: %s", results[0].Status, results[0].Message)
	}
}

// --- Settings tests ---

func TestCheckSettings_NothingConfigured(t *testing.T) {
	t.Setenv("SKYLENS_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	state := checkState{root: t.TempDir()}
	results := checkSettings(&state)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != doctor.StatusPass {
		t.Errorf("expected PASS for absent global settings, got %s: %s", results[0].Status, results[0].Message)
	}
	if results[1].Status != doctor.StatusSkip {
		t.Errorf("expected SKIP for absent workspace settings, got %s: %s", results[1].Status, results[1].Message)
	}
}

func TestCheckSettings_GlobalUnreadable(t *testing.T) {
	t.Setenv("SKYLENS_CONFIG", filepath.Join(t.TempDir(), "nonexistent.yaml"))

	state := checkState{root: ""}
	results := checkSettings(&state)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != doctor.StatusFail {
		t.Errorf("expected FAIL for missing SKYLENS_CONFIG target, got %s: %s", results[0].Status, results[0].Message)
	}
	if results[1].Status != doctor.StatusSkip {
		t.Errorf("expected SKIP without a workspace, got %s", results[1].Status)
	}
}

func TestCheckSettings_WorkspaceFileValid(t *testing.T) {
	t.Setenv("SKYLENS_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	content := `{
	// editor watcher quiet period
	"debounce": "250ms",
}
`
	if err := os.WriteFile(filepath.Join(root, "skylens.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	state := checkState{root: root}
	results := checkSettings(&state)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != doctor.StatusPass {
		t.Errorf("expected PASS for valid skylens.json, got %s: %s", results[1].Status, results[1].Message)
	}
}

func TestCheckSettings_WorkspaceFileBroken(t *testing.T) {
	t.Setenv("SKYLENS_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "skylens.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := checkState{root: root}
	results := checkSettings(&state)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != doctor.StatusFail {
		t.Errorf("expected FAIL for broken skylens.json, got %s: %s", results[1].Status, results[1].Message)
	}
	if !strings.Contains(results[1].Hint, "skylens.json") {
		t.Errorf("expected hint naming skylens.json, got %q", results[1].Hint)
	}
}

func TestCheckSettings_BadDebounce(t *testing.T) {
	t.Setenv("SKYLENS_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "skylens.json"), []byte(`{"debounce": "fast"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	state := checkState{root: root}
	results := checkSettings(&state)

	if results[1].Status != doctor.StatusFail {
		t.Errorf("expected FAIL for unparseable debounce, got %s: %s", results[1].Status, results[1].Message)
	}
}

// --- Cache tests ---

func TestCheckCache_EmptyDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result := checkCache(t.TempDir(), logger)

	if result.Status != doctor.StatusPass {
		t.Errorf("expected PASS, got %s: %s", result.Status, result.Message)
	}
	if !strings.Contains(result.Message, "0 entries") {
		t.Errorf("expected entry count in message, got %q", result.Message)
	}
}

func TestCheckCache_Unavailable(t *testing.T) {
	// A file where the directory should be makes Open fail.
	blocked := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(blocked, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result := checkCache(filepath.Join(blocked, "cache"), logger)

	if result.Status != doctor.StatusWarn {
		t.Errorf("expected WARN, got %s: %s", result.Status, result.Message)
	}
}

// chdir mirrors testing.T.Chdir for toolchains predating Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic(err)
		}
	})
}
