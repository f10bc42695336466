// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestRelevantEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"module-write", fsnotify.Event{Name: "/ws/MODULE.bazel", Op: fsnotify.Write}, true},
		{"lockfile-rename", fsnotify.Event{Name: "/ws/MODULE.bazel.lock", Op: fsnotify.Rename}, true},
		{"bazelrc-create", fsnotify.Event{Name: "/ws/.bazelrc", Op: fsnotify.Create}, true},
		{"workspace-remove", fsnotify.Event{Name: "/ws/WORKSPACE", Op: fsnotify.Remove}, true},
		{"module-chmod-only", fsnotify.Event{Name: "/ws/MODULE.bazel", Op: fsnotify.Chmod}, false},
		{"unrelated-file", fsnotify.Event{Name: "/ws/README.md", Op: fsnotify.Write}, false},
		{"build-file", fsnotify.Event{Name: "/ws/pkg/BUILD.bazel", Op: fsnotify.Write}, false},
	}
	for _, testCase := range tests {
		if got := relevantEvent(testCase.event); got != testCase.want {
			t.Errorf("%s: relevantEvent = %v, want %v", testCase.name, got, testCase.want)
		}
	}
}
