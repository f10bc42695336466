// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/skylens-build/skylens/lib/clock"
)

// watchedFiles are the workspace-defining files whose changes make
// cached workspace state stale.
var watchedFiles = []string{
	"MODULE.bazel",
	"MODULE.bazel.lock",
	"REPO.bazel",
	"WORKSPACE",
	"WORKSPACE.bazel",
	"WORKSPACE.bzlmod",
	".bazelrc",
	".bazelversion",
	"skylens.json",
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Logger receives watch lifecycle and error records. Nil discards
	// them.
	Logger *slog.Logger

	// Clock drives the debounce timer. Nil uses the real clock.
	Clock clock.Clock

	// Debounce is the quiet period after the last change before
	// OnChange fires. Editors and bazel itself touch several of the
	// watched files in quick bursts. Zero means 500ms.
	Debounce time.Duration

	// OnChange is invoked once per settled burst of changes. Required.
	OnChange func()
}

// Watcher watches a workspace root for changes to the files that
// define the workspace and fires a debounced callback. Run it in its
// own goroutine; it stops when the context is canceled.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	clock    clock.Clock
	debounce time.Duration
	onChange func()
}

// NewWatcher registers a filesystem watch on root. The returned
// Watcher does nothing until Run is called.
func NewWatcher(root string, options WatcherOptions) (*Watcher, error) {
	if options.OnChange == nil {
		return nil, fmt.Errorf("workspace watcher for %s: OnChange is required", root)
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Debounce == 0 {
		options.Debounce = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	return &Watcher{
		root:     root,
		watcher:  watcher,
		logger:   options.Logger,
		clock:    options.Clock,
		debounce: options.Debounce,
		onChange: options.OnChange,
	}, nil
}

// Run delivers debounced change notifications until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.logger.Info("watching workspace", "root", w.root, "debounce", w.debounce)

	var pending *clock.Timer
	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			w.logger.Info("workspace watcher stopped", "root", w.root)
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			w.logger.Debug("workspace file changed", "file", event.Name, "op", event.Op.String())
			if pending != nil {
				pending.Stop()
			}
			pending = w.clock.AfterFunc(w.debounce, w.onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("workspace watcher error", "root", w.root, "error", err)
		}
	}
}

// relevantEvent reports whether a filesystem event can change
// workspace state. Rename and Remove count alongside Write and
// Create: atomic writers replace files wholesale, and bazel rewrites
// MODULE.bazel.lock that way.
func relevantEvent(event fsnotify.Event) bool {
	if !slices.Contains(watchedFiles, filepath.Base(event.Name)) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
