// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package builtins catalogs the names the Bazel build language
// defines: native rules read from bazel's build-language dump, and
// the globals bazel injects into each file type. The catalog backs
// completion, hover documentation, and the undefined-global lint.
//
// Rule information comes from `bazel info build-language`, a protobuf
// dump whose schema is stable but for which bazel ships no generated
// bindings; this package decodes the handful of fields it needs
// directly from the wire format. Globals that never appear in that
// dump (glob, select, the workspace and module directives) live in an
// embedded snapshot curated from the Bazel documentation, as do
// fallback rule definitions for running without a bazel binary.
package builtins
