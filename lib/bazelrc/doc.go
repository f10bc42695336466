// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package bazelrc parses and edits .bazelrc files.
//
// A bazelrc is a line-oriented file of build-tool options:
//
//	common --enable_platform_specific_config
//	build:ci --remote_cache=https://cache.example.com
//	try-import %workspace%/user.bazelrc
//
// Each directive names a command ("build", "test", "common", ...) with
// an optional ":config" group suffix and a list of flags. Load follows
// import and try-import directives, expanding %workspace% against the
// workspace root. Effective computes the flag list bazel would apply
// for a command, honoring command inheritance (test inherits build
// inherits common), --config expansion, and platform-specific
// configs.
//
// The package also maintains the --deleted_packages directives that
// hide nested fixture workspaces from the surrounding workspace's
// package index. The directive must appear on both build and query
// lines because query does not inherit build options; DeletedPackages
// enforces that the two copies agree, and UpdateDeletedPackages
// rewrites both in place.
package bazelrc
