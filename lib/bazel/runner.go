// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package bazel

import (
	"context"
	"encoding/json"
	"fmt"
)

// Runner is the subset of Bazel operations the language service needs.
// *Client implements it by invoking the bazel binary; *FakeRunner
// implements it from canned data for tests.
//
// All methods take the workspace directory the invocation should run
// in. They are blocking and honor context cancellation.
type Runner interface {
	// Info returns the "bazel info" key-value output for the workspace.
	Info(ctx context.Context, workspaceDir string) (map[string]string, error)

	// Query evaluates a query expression and returns the matching
	// labels.
	Query(ctx context.Context, workspaceDir, pattern string) ([]string, error)

	// DumpRepoMapping returns the apparent-to-canonical repository
	// name mapping as seen from repo. The empty string names the main
	// repository.
	DumpRepoMapping(ctx context.Context, workspaceDir, repo string) (map[string]string, error)

	// BuildLanguage returns the serialized BuildLanguage protobuf for
	// the workspace's Bazel version.
	BuildLanguage(ctx context.Context, workspaceDir string) ([]byte, error)
}

// Unavailable returns a Runner whose every method fails with err. The
// serve command uses it when no bazel binary is on PATH: the resolver
// degrades to answering from the workspace tree and the embedded
// builtins snapshot instead of the process refusing to start.
func Unavailable(err error) Runner {
	return unavailableRunner{err: err}
}

type unavailableRunner struct{ err error }

func (r unavailableRunner) Info(context.Context, string) (map[string]string, error) {
	return nil, r.err
}

func (r unavailableRunner) Query(context.Context, string, string) ([]string, error) {
	return nil, r.err
}

func (r unavailableRunner) DumpRepoMapping(context.Context, string, string) (map[string]string, error) {
	return nil, r.err
}

func (r unavailableRunner) BuildLanguage(context.Context, string) ([]byte, error) {
	return nil, r.err
}

// parseRepoMapping decodes the JSON object printed by
// "bazel mod dump_repo_mapping": apparent name to canonical name.
func parseRepoMapping(output []byte) (map[string]string, error) {
	mapping := make(map[string]string)
	if err := json.Unmarshal(output, &mapping); err != nil {
		return nil, fmt.Errorf("parse repo mapping: %w", err)
	}
	return mapping, nil
}
