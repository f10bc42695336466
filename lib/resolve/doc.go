// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve turns labels into files and files into labels.
//
// A Resolver owns the per-workspace state needed to answer editor
// questions: where does this load() point, what label names this
// file, what can complete the string under the cursor, and which
// build-language symbols exist for this bazel version. It layers the
// workspace cache, repository mappings, the bazelrc deleted-packages
// set, and the builtins catalog behind four operations so callers
// never talk to bazel directly.
//
// Everything degrades: without a reachable bazel the resolver still
// answers from the discovered workspace root and the embedded
// builtins snapshot, it just cannot see into external repositories.
package resolve
