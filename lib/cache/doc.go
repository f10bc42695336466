// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache stores data derived from a bazel installation on
// disk: build-language dumps, repository mappings, and anything else
// expensive to recompute but cheap to invalidate. Entries are CBOR
// envelopes compressed with zstd, addressed by a blake3 key of the
// inputs that produced them, and aged out by TTL. A corrupt or
// stale entry is a miss, never an error: the cache is an
// accelerator, and callers always know how to recompute.
package cache
