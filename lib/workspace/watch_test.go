// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package workspace_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/skylens-build/skylens/lib/clock"
	"github.com/skylens-build/skylens/lib/testutil"
	"github.com/skylens-build/skylens/lib/workspace"
)

func TestWatcherDebouncedCallback(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "MODULE.bazel"), "module(name = \"demo\")\n")

	fakeClock := clock.Fake(time.Now())
	changed := make(chan struct{}, 1)
	watcher, err := workspace.NewWatcher(root, workspace.WatcherOptions{
		Clock: fakeClock,
		OnChange: func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcher.Run(ctx)
	}()

	// Touch a workspace-defining file; the callback must not fire
	// until the debounce period elapses on the fake clock.
	mustWrite(t, filepath.Join(root, "MODULE.bazel"), "module(name = \"demo\", version = \"1.0\")\n")

	fakeClock.WaitForTimers(1)
	select {
	case <-changed:
		t.Fatal("callback fired before the debounce period elapsed")
	default:
	}

	fakeClock.Advance(time.Second)
	testutil.RequireReceive(t, changed, 5*time.Second, "debounced change callback")

	cancel()
	testutil.RequireClosed(t, done, 5*time.Second, "watcher shutdown")
}

func TestWatcherRequiresCallback(t *testing.T) {
	t.Parallel()

	if _, err := workspace.NewWatcher(t.TempDir(), workspace.WatcherOptions{}); err == nil {
		t.Error("NewWatcher accepted options without OnChange")
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "gone")
	_, err := workspace.NewWatcher(missing, workspace.WatcherOptions{OnChange: func() {}})
	if err == nil {
		t.Error("NewWatcher accepted a nonexistent root")
	}
}
