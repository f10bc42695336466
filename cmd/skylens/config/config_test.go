// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadBazelrcMissingDefault(t *testing.T) {
	root := t.TempDir()

	file, err := loadBazelrc(root, "")
	if err != nil {
		t.Fatalf("loadBazelrc: %v", err)
	}
	if len(file.Lines) != 0 {
		t.Errorf("expected an empty configuration, got %d lines", len(file.Lines))
	}
	if file.Path != filepath.Join(root, ".bazelrc") {
		t.Errorf("Path = %q", file.Path)
	}
}

func TestLoadBazelrcMissingExplicit(t *testing.T) {
	root := t.TempDir()

	_, err := loadBazelrc(root, filepath.Join(root, "ci.bazelrc"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadBazelrcReadsDefault(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, ".bazelrc"), "build --verbose_failures\n")

	file, err := loadBazelrc(root, "")
	if err != nil {
		t.Fatalf("loadBazelrc: %v", err)
	}
	if len(file.Lines) != 1 || file.Lines[0].Command != "build" {
		t.Errorf("Lines = %+v", file.Lines)
	}
}

func TestLoadBazelrcExplicitOverridesDefault(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, ".bazelrc"), "build --verbose_failures\n")
	override := filepath.Join(root, "ci.bazelrc")
	mustWrite(t, override, "test --test_output=errors\n")

	file, err := loadBazelrc(root, override)
	if err != nil {
		t.Fatalf("loadBazelrc: %v", err)
	}
	if len(file.Lines) != 1 || file.Lines[0].Command != "test" {
		t.Errorf("Lines = %+v", file.Lines)
	}
}

// Bazel's platform config groups are named linux, macos, and windows;
// "darwin" must never leak through.
func TestHostPlatformNaming(t *testing.T) {
	got := hostPlatform()
	if got == "darwin" || got == "" {
		t.Errorf("hostPlatform = %q, want a bazel platform group name", got)
	}
	if runtime.GOOS == "darwin" && got != "macos" {
		t.Errorf("hostPlatform = %q, want macos", got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
