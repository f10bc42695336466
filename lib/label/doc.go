// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package label provides a validated, immutable value type for Bazel
// labels. A label names a target within a workspace:
//
//	@repo//package/path:target
//
// Every part is optional in source text. Parse accepts the full
// grammar of labels that appear in load statements and rule
// attributes: absolute labels with or without a repository part,
// canonical (@@) repository names, bare repository references
// (@repo), and relative forms (:target, path/to/file.bzl).
//
// A parsed Label is immutable. Accessors return the parts; String
// renders the shortest canonical spelling (the default target name is
// omitted when it repeats the last package segment). Label implements
// encoding.TextMarshaler and TextUnmarshaler, so it can be used
// directly as a JSON or CBOR struct field.
package label
