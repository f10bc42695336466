// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"path/filepath"
	"strings"
)

// FileType classifies a Starlark file by the dialect bazel applies to
// it. The type decides which globals are in scope and which lints
// apply.
type FileType int

const (
	// FileTypeUnknown is any file not recognized below. It is parsed
	// like a .bzl file.
	FileTypeUnknown FileType = iota

	// FileTypeBuild is a BUILD or BUILD.bazel package file.
	FileTypeBuild

	// FileTypeBzl is a .bzl extension file.
	FileTypeBzl

	// FileTypeWorkspace is a legacy WORKSPACE file (including
	// WORKSPACE.bazel and WORKSPACE.bzlmod).
	FileTypeWorkspace

	// FileTypeModule is a bzlmod MODULE.bazel or REPO.bazel file.
	FileTypeModule
)

// BuildFileNames are the file names bazel recognizes as package
// files, in the order target resolution tries them.
var BuildFileNames = []string{"BUILD", "BUILD.bazel"}

// FileTypeOf classifies a file by its base name.
func FileTypeOf(path string) FileType {
	base := filepath.Base(path)
	switch base {
	case "BUILD", "BUILD.bazel":
		return FileTypeBuild
	case "WORKSPACE", "WORKSPACE.bazel", "WORKSPACE.bzlmod":
		return FileTypeWorkspace
	case "MODULE.bazel", "REPO.bazel":
		return FileTypeModule
	}
	if strings.HasSuffix(base, ".bzl") {
		return FileTypeBzl
	}
	return FileTypeUnknown
}

// String returns the lowercase name bazel documentation uses for the
// file type.
func (t FileType) String() string {
	switch t {
	case FileTypeBuild:
		return "build"
	case FileTypeBzl:
		return "bzl"
	case FileTypeWorkspace:
		return "workspace"
	case FileTypeModule:
		return "module"
	default:
		return "unknown"
	}
}
