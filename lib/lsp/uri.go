// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// uriToPath converts a file: URI to a filesystem path.
func uriToPath(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse document uri %q: %w", uri, err)
	}
	if parsed.Scheme != "file" {
		return "", fmt.Errorf("document uri %q: only file: uris are supported", uri)
	}
	if parsed.Path == "" {
		return "", fmt.Errorf("document uri %q has no path", uri)
	}
	return filepath.FromSlash(parsed.Path), nil
}

// pathToURI converts an absolute filesystem path to a file: URI.
func pathToURI(path string) string {
	escaped := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return escaped.String()
}
