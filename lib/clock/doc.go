// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Skylens uses time in two places: the disk cache stamps entries with a
// creation time and expires them by age, and the workspace watcher
// debounces filesystem events with a timer. Both accept a Clock so
// tests can control time instead of sleeping.
//
// In production, Real() provides standard library behavior. In tests,
// Fake() provides a deterministic clock that advances only when Advance
// is called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	w, _ := workspace.NewWatcher(root, workspace.WatcherOptions{Clock: c, ...})
//	// ... trigger a filesystem event ...
//	c.WaitForTimers(1)         // block until the debounce timer registers
//	c.Advance(time.Second)     // fire it deterministically
//
// WaitForTimers eliminates the race between a goroutine registering a
// timer and the test advancing the clock, which is what plagues tests
// that use time.Sleep for synchronization.
package clock
