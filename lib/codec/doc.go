// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides skylens's standard CBOR encoding
// configuration.
//
// Skylens uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: the language server protocol,
//     CLI --json output, bazel's dump_repo_mapping output, and the
//     builtins snapshot files.
//   - CBOR for internal state: the on-disk cache of build-language
//     dumps and repository mappings.
//
// This package provides the shared CBOR encoding and decoding modes
// so that every skylens package encodes identically without
// duplicating configuration. The encoder uses Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical data always
// produces identical bytes, which keeps cache files stable across
// rewrites of unchanged data.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (compressed cache files):
//
//	encoder := codec.NewEncoder(compressor)
//	decoder := codec.NewDecoder(decompressor)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR, like
//     the cache entry envelope.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats. Examples: builtins rules that
//     appear in snapshot files and in cached dumps.
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract; doubling up obscures whether a type
// participates in JSON serialization.
package codec
