// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/skylens-build/skylens/lib/bazel"
)

// Cache memoizes Workspaces per root directory. Building a Workspace
// runs "bazel info", which can take seconds on a cold output base, so
// every consumer of workspace layout shares one Cache.
//
// Cache is safe for concurrent use. Concurrent misses for the same
// root may each consult bazel; the last result wins, which is
// harmless because bazel info is idempotent.
type Cache struct {
	runner bazel.Runner

	mu      sync.Mutex
	entries map[string]*Workspace
}

// NewCache returns an empty Cache backed by runner.
func NewCache(runner bazel.Runner) *Cache {
	return &Cache{
		runner:  runner,
		entries: make(map[string]*Workspace),
	}
}

// Get returns the Workspace rooted at root, consulting bazel on the
// first request and the cache afterwards.
func (c *Cache) Get(ctx context.Context, root string) (*Workspace, error) {
	root = filepath.Clean(root)

	c.mu.Lock()
	if workspace, ok := c.entries[root]; ok {
		c.mu.Unlock()
		return workspace, nil
	}
	c.mu.Unlock()

	info, err := c.runner.Info(ctx, root)
	if err != nil {
		return nil, err
	}
	workspace, err := FromInfo(root, info)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[root] = workspace
	c.mu.Unlock()
	return workspace, nil
}

// Invalidate drops the cached Workspace for root, forcing the next
// Get to consult bazel again.
func (c *Cache) Invalidate(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, filepath.Clean(root))
}

// InvalidateAll drops every cached Workspace.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Workspace)
}

// Cached reports whether a Workspace for root is currently cached.
func (c *Cache) Cached(root string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[filepath.Clean(root)]
	return ok
}
