// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the skylens CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/skylens/commands
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, signal-aware context setup, and structured help
// output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Command errors are categorized via [ToolError] so scripted callers can
// distinguish bad input from missing resources and transient failures
// without parsing message text. The binary's main function maps
// validation errors to exit code 2, in the manner of bazel's own
// command-line-problem exit code.
package cli
