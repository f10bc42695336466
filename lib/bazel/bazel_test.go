// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package bazel

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParseInfo(t *testing.T) {
	t.Parallel()

	output := "bazel-bin: /out/execroot/_main/bazel-out/k8-fastbuild/bin\n" +
		"execution_root: /out/execroot/_main\n" +
		"output_base: /out\n" +
		"release: release 7.4.1\n" +
		"line without separator\n" +
		"\n"

	info := ParseInfo(output)
	tests := []struct {
		key  string
		want string
	}{
		{"output_base", "/out"},
		{"execution_root", "/out/execroot/_main"},
		{"release", "release 7.4.1"},
		{"bazel-bin", "/out/execroot/_main/bazel-out/k8-fastbuild/bin"},
	}
	for _, testCase := range tests {
		if got := info[testCase.key]; got != testCase.want {
			t.Errorf("info[%q] = %q, want %q", testCase.key, got, testCase.want)
		}
	}
	if len(info) != len(tests) {
		t.Errorf("parsed %d keys, want %d: %v", len(info), len(tests), info)
	}
}

func TestParseRepoMapping(t *testing.T) {
	t.Parallel()

	mapping, err := parseRepoMapping([]byte(`{"": "", "rules_go": "rules_go~", "io_bazel_rules_go": "rules_go~"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mapping["rules_go"]; got != "rules_go~" {
		t.Errorf("mapping[rules_go] = %q, want %q", got, "rules_go~")
	}
	if got, ok := mapping[""]; !ok || got != "" {
		t.Errorf("mapping[\"\"] = %q (present=%v), want empty string present", got, ok)
	}

	if _, err := parseRepoMapping([]byte("ERROR: no such module")); err == nil {
		t.Error("expected error for non-JSON output")
	}
}

func TestNewClientExplicitBinary(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Options{Binary: "/opt/bazel/bin/bazel"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Binary() != "/opt/bazel/bin/bazel" {
		t.Errorf("Binary() = %q, want %q", client.Binary(), "/opt/bazel/bin/bazel")
	}
}

func TestFormatError_PrefersStderr(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	stderr.WriteString("ERROR: no such package 'nope': BUILD file not found\n")

	err := formatError([]string{"query", "//nope:*"}, &stderr, nil)
	if err == nil {
		t.Fatal("expected non-nil error")
	}

	errorString := err.Error()
	if !strings.HasPrefix(errorString, "bazel query //nope:*: ") {
		t.Errorf("error prefix = %q, want 'bazel query //nope:*: '", errorString)
	}
	if !strings.Contains(errorString, "BUILD file not found") {
		t.Errorf("error = %q, want stderr content included", errorString)
	}
}

func TestFormatError_KeepsStderrTail(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	for i := 0; i < 30; i++ {
		stderr.WriteString("Loading: 1 packages loaded\n")
	}
	stderr.WriteString("ERROR: the actual failure\n")

	err := formatError([]string{"build", "//..."}, &stderr, nil)
	if !strings.Contains(err.Error(), "the actual failure") {
		t.Errorf("error = %q, want final stderr line included", err)
	}
	if got := strings.Count(err.Error(), "packages loaded"); got > 9 {
		t.Errorf("error keeps %d progress lines, want at most 9", got)
	}
}

func TestFormatError_FallsBackToExecError(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	err := formatError([]string{"info"}, &stderr, context.DeadlineExceeded)
	if err == nil {
		t.Fatal("expected non-nil error")
	}
	if !strings.Contains(err.Error(), "bazel info") {
		t.Errorf("error = %q, want command in error", err)
	}
	if !strings.Contains(err.Error(), "deadline exceeded") {
		t.Errorf("error = %q, want exec error included", err)
	}
}

func TestFakeRunnerCannedData(t *testing.T) {
	t.Parallel()

	fake := NewFakeRunner()
	fake.InfoResult["output_base"] = "/out"
	fake.QueryResults["//pkg:*"] = []string{"//pkg:lib", "//pkg:test"}
	fake.RepoMappings[""] = map[string]string{"rules_go": "rules_go~"}

	ctx := context.Background()

	info, err := fake.Info(ctx, "/workspace")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info["output_base"] != "/out" {
		t.Errorf("Info output_base = %q, want %q", info["output_base"], "/out")
	}

	labels, err := fake.Query(ctx, "/workspace", "//pkg:*")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(labels) != 2 || labels[0] != "//pkg:lib" {
		t.Errorf("Query = %v, want [//pkg:lib //pkg:test]", labels)
	}
	if _, err := fake.Query(ctx, "/workspace", "//missing:*"); err == nil {
		t.Error("expected error for query without canned result")
	}

	mapping, err := fake.DumpRepoMapping(ctx, "/workspace", "")
	if err != nil {
		t.Fatalf("DumpRepoMapping: %v", err)
	}
	if mapping["rules_go"] != "rules_go~" {
		t.Errorf("mapping[rules_go] = %q, want %q", mapping["rules_go"], "rules_go~")
	}

	if _, err := fake.BuildLanguage(ctx, "/workspace"); err == nil {
		t.Error("expected error with no canned build-language proto")
	}

	if fake.InfoCalls() != 1 {
		t.Errorf("InfoCalls() = %d, want 1", fake.InfoCalls())
	}
	if fake.QueryCalls() != 2 {
		t.Errorf("QueryCalls() = %d, want 2", fake.QueryCalls())
	}
	if fake.RepoMappingCalls() != 1 {
		t.Errorf("RepoMappingCalls() = %d, want 1", fake.RepoMappingCalls())
	}
	if fake.BuildLanguageCalls() != 1 {
		t.Errorf("BuildLanguageCalls() = %d, want 1", fake.BuildLanguageCalls())
	}
}

func TestFakeRunnerCopiesResults(t *testing.T) {
	t.Parallel()

	fake := NewFakeRunner()
	fake.QueryResults["//pkg:*"] = []string{"//pkg:a"}

	labels, err := fake.Query(context.Background(), "/workspace", "//pkg:*")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	labels[0] = "mutated"

	again, err := fake.Query(context.Background(), "/workspace", "//pkg:*")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if again[0] != "//pkg:a" {
		t.Errorf("canned result mutated through returned slice: %q", again[0])
	}
}
