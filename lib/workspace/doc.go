// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package workspace locates and models Bazel workspaces.
//
// DiscoverRoot finds the workspace root for a file by walking up the
// directory tree, honoring the DO_NOT_BUILD_HERE breadcrumbs bazel
// leaves in its output tree so that files opened from external
// repositories resolve back to the workspace that fetched them.
//
// A Workspace is built from "bazel info" output and answers layout
// questions: where an external repository lives on disk, which
// repository a file belongs to, and what the workspace calls itself.
// Cache memoizes Workspaces per root because each construction costs
// a bazel invocation; Watcher invalidates the cache when the files
// that define the workspace (MODULE.bazel, WORKSPACE, .bazelrc, ...)
// change on disk.
package workspace
