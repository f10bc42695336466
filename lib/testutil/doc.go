// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for skylens packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern for tests that wait on asynchronous events, watcher
// callbacks and shutdown channels mostly, so a hang fails the test
// instead of wedging the run. They are the only real wall-clock waits
// in the test suite; timer behavior under test goes through lib/clock
// fakes.
//
// Both helpers call t.Fatalf on failure rather than returning errors,
// since a missed event leaves nothing to recover.
//
// This package has no skylens-internal dependencies.
package testutil
