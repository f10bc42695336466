// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package bazel

import (
	"context"
	"fmt"
	"sync"
)

// NewFakeRunner returns a FakeRunner with empty canned data. Populate
// the exported fields before handing it to the code under test.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		InfoResult:   make(map[string]string),
		QueryResults: make(map[string][]string),
		RepoMappings: make(map[string]map[string]string),
	}
}

// FakeRunner is a deterministic Runner for testing. It serves canned
// results and counts invocations per method, so tests can assert both
// behavior and how often the (expensive, in production) bazel binary
// would have been consulted.
//
// FakeRunner is safe for concurrent use by multiple goroutines.
type FakeRunner struct {
	mu sync.Mutex

	// InfoResult is returned by Info for every workspace directory.
	InfoResult map[string]string

	// QueryResults maps a query pattern to the labels it returns.
	// Patterns not present yield an error, like a query for a package
	// that does not exist.
	QueryResults map[string][]string

	// RepoMappings maps a repository name (empty string for the main
	// repository) to its apparent-to-canonical mapping.
	RepoMappings map[string]map[string]string

	// BuildLanguageProto is returned by BuildLanguage. Nil yields an
	// error, like a bazel too old to support "info build-language".
	BuildLanguageProto []byte

	infoCalls          int
	queryCalls         int
	repoMappingCalls   int
	buildLanguageCalls int
}

// Info implements Runner.
func (f *FakeRunner) Info(ctx context.Context, workspaceDir string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	if len(f.InfoResult) == 0 {
		return nil, fmt.Errorf("fake runner: no canned info output")
	}
	result := make(map[string]string, len(f.InfoResult))
	for key, value := range f.InfoResult {
		result[key] = value
	}
	return result, nil
}

// Query implements Runner.
func (f *FakeRunner) Query(ctx context.Context, workspaceDir, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	labels, ok := f.QueryResults[pattern]
	if !ok {
		return nil, fmt.Errorf("fake runner: no canned result for query %q", pattern)
	}
	return append([]string{}, labels...), nil
}

// DumpRepoMapping implements Runner.
func (f *FakeRunner) DumpRepoMapping(ctx context.Context, workspaceDir, repo string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repoMappingCalls++
	mapping, ok := f.RepoMappings[repo]
	if !ok {
		return nil, fmt.Errorf("fake runner: no canned repo mapping for %q", repo)
	}
	result := make(map[string]string, len(mapping))
	for apparent, canonical := range mapping {
		result[apparent] = canonical
	}
	return result, nil
}

// BuildLanguage implements Runner.
func (f *FakeRunner) BuildLanguage(ctx context.Context, workspaceDir string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buildLanguageCalls++
	if f.BuildLanguageProto == nil {
		return nil, fmt.Errorf("fake runner: no canned build-language proto")
	}
	return append([]byte{}, f.BuildLanguageProto...), nil
}

// InfoCalls returns how many times Info was invoked.
func (f *FakeRunner) InfoCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.infoCalls
}

// QueryCalls returns how many times Query was invoked.
func (f *FakeRunner) QueryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryCalls
}

// RepoMappingCalls returns how many times DumpRepoMapping was invoked.
func (f *FakeRunner) RepoMappingCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repoMappingCalls
}

// BuildLanguageCalls returns how many times BuildLanguage was invoked.
func (f *FakeRunner) BuildLanguageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buildLanguageCalls
}
