// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package version carries the build identity of the skylens binary:
// the version editors see in the initialize response, and the longer
// form behind "skylens version".
//
// Release builds stamp the variables with -ldflags:
//
//	go build -ldflags "-X github.com/skylens-build/skylens/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

// Stamped at build time via -ldflags. Development builds keep the
// defaults.
var (
	// Version is the semantic version, set by hand for releases.
	Version = "0.1.0-dev"

	// GitCommit is the short commit SHA the binary was built from.
	GitCommit = "unknown"

	// GitDirty is "true" when the build tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Info renders the one-line form: version, commit, and build time.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full renders the multi-line form for "skylens version": Info plus
// the Go toolchain and target platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
