// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package lsp implements a language server for Bazel's Starlark
// dialect over the Language Server Protocol's base framing
// (Content-Length headers on stdio).
//
// The server keeps an overlay of open documents synced with full
// text, publishes lint diagnostics on every change, and answers
// completion, definition, and hover requests by combining the
// file analysis in lib/analysis with the label resolution in
// lib/resolve. The read-dispatch-write loop is sequential; one
// request is fully answered before the next is read.
package lsp
