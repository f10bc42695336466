// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package analysis parses Starlark files and reports diagnostics.
//
// Parse builds a Document from source text using the Bazel dialect
// (no while loops, no top-level control flow, module-scoped load
// bindings). Lint adds semantic diagnostics on top: identifiers that
// neither the file nor the build language defines, load statements
// below the first real statement, and load bindings nothing uses.
// WORKSPACE files keep their interleaved loads without complaint,
// since there each load legitimately depends on the repository rules
// above it.
//
// A Document also answers the structural questions the language
// service asks: the load statements with their bindings, the rule
// with a given name attribute, and the file's top-level bindings.
package analysis
