// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package analysis_test

import (
	"testing"

	"github.com/skylens-build/skylens/lib/analysis"
)

func TestFileTypeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want analysis.FileType
	}{
		{"BUILD", analysis.FileTypeBuild},
		{"pkg/sub/BUILD.bazel", analysis.FileTypeBuild},
		{"WORKSPACE", analysis.FileTypeWorkspace},
		{"WORKSPACE.bazel", analysis.FileTypeWorkspace},
		{"WORKSPACE.bzlmod", analysis.FileTypeWorkspace},
		{"MODULE.bazel", analysis.FileTypeModule},
		{"REPO.bazel", analysis.FileTypeModule},
		{"tools/defs.bzl", analysis.FileTypeBzl},
		{"README.md", analysis.FileTypeUnknown},
		{"build", analysis.FileTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := analysis.FileTypeOf(tt.path); got != tt.want {
				t.Errorf("FileTypeOf(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	src := `"""Release helpers."""

load("//tools:defs.bzl", "image")

def release_image(name):
    image(name = name, tag = "latest")
`
	doc, diags := analysis.Parse("tools/release.bzl", []byte(src))
	if len(diags) != 0 {
		t.Fatalf("Parse diagnostics = %v, want none", diags)
	}
	if doc.Type != analysis.FileTypeBzl {
		t.Errorf("doc.Type = %v, want %v", doc.Type, analysis.FileTypeBzl)
	}
	if doc.File == nil {
		t.Fatal("Parse returned a document without a syntax tree")
	}
	if doc.Path != "tools/release.bzl" {
		t.Errorf("doc.Path = %q, want %q", doc.Path, "tools/release.bzl")
	}
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	doc, diags := analysis.Parse("BUILD", []byte("cc_library(\n    name = ,\n)\n"))
	if doc == nil {
		t.Fatal("Parse returned nil document for broken input")
	}
	if doc.File != nil {
		t.Error("doc.File != nil, want nil for unparseable input")
	}
	if len(diags) != 1 {
		t.Fatalf("Parse diagnostics = %v, want exactly one", diags)
	}
	d := diags[0]
	if d.Code != analysis.CodeSyntax {
		t.Errorf("diagnostic code = %q, want %q", d.Code, analysis.CodeSyntax)
	}
	if d.Severity != analysis.SeverityError {
		t.Errorf("diagnostic severity = %v, want %v", d.Severity, analysis.SeverityError)
	}
	if d.Start.Line != 2 {
		t.Errorf("diagnostic line = %d, want 2", d.Start.Line)
	}
	if d.Message == "" {
		t.Error("diagnostic message is empty")
	}
}

func TestParseEmptyFile(t *testing.T) {
	t.Parallel()

	doc, diags := analysis.Parse("pkg/BUILD.bazel", nil)
	if len(diags) != 0 {
		t.Fatalf("Parse diagnostics = %v, want none", diags)
	}
	if doc.File == nil {
		t.Fatal("empty file should still produce a syntax tree")
	}
	if len(doc.File.Stmts) != 0 {
		t.Errorf("empty file has %d statements, want 0", len(doc.File.Stmts))
	}
}
