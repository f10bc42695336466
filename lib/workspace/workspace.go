// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RootMarkers are the files that mark a directory as a workspace
// root, in bazel's own precedence order.
var RootMarkers = []string{"MODULE.bazel", "REPO.bazel", "WORKSPACE.bazel", "WORKSPACE", "WORKSPACE.bzlmod"}

// doNotBuildHere is the breadcrumb file bazel writes into its output
// tree. Its content is the path of the workspace the tree belongs to.
const doNotBuildHere = "DO_NOT_BUILD_HERE"

// ErrNoRoot is returned by DiscoverRoot when no ancestor directory is
// a workspace root.
var ErrNoRoot = errors.New("no workspace root found")

// DiscoverRoot walks up from start (a file or directory) looking for
// a workspace root. A DO_NOT_BUILD_HERE breadcrumb redirects to the
// workspace recorded inside it, so files under bazel's output base or
// inside fetched external repositories resolve to the workspace that
// owns them rather than to the output tree itself.
func DiscoverRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		breadcrumb := filepath.Join(dir, doNotBuildHere)
		if content, err := os.ReadFile(breadcrumb); err == nil {
			return strings.TrimSpace(string(content)), nil
		}
		for _, marker := range RootMarkers {
			if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && !info.IsDir() {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w above %s", ErrNoRoot, start)
		}
		dir = parent
	}
}

// Workspace is the layout of one Bazel workspace, as reported by
// "bazel info". Construct it with FromInfo.
type Workspace struct {
	// Root is the workspace root directory.
	Root string

	// OutputBase is bazel's per-workspace output directory; external
	// repositories materialize under OutputBase/external.
	OutputBase string

	// ExecutionRoot is the directory actions run in. Its basename is
	// the workspace's canonical name.
	ExecutionRoot string

	// Release is the bazel version string ("release 7.4.1"), when
	// reported.
	Release string

	name string
}

// FromInfo builds a Workspace from parsed "bazel info" output.
func FromInfo(root string, info map[string]string) (*Workspace, error) {
	outputBase := info["output_base"]
	if outputBase == "" {
		return nil, fmt.Errorf("bazel info for %s is missing output_base", root)
	}
	executionRoot := info["execution_root"]
	if executionRoot == "" {
		return nil, fmt.Errorf("bazel info for %s is missing execution_root", root)
	}

	name := filepath.Base(executionRoot)
	if name == "_main" || name == "__main__" {
		// bzlmod canonical names for the main repository; the
		// workspace has no name of its own.
		name = ""
	}

	return &Workspace{
		Root:          root,
		OutputBase:    outputBase,
		ExecutionRoot: executionRoot,
		Release:       info["release"],
		name:          name,
	}, nil
}

// Name returns the workspace name, or the empty string for bzlmod
// workspaces whose execution root carries only the canonical _main
// placeholder.
func (w *Workspace) Name() string { return w.name }

// ExternalRoot returns the directory external repositories
// materialize under.
func (w *Workspace) ExternalRoot() string {
	return filepath.Join(w.OutputBase, "external")
}

// RepositoryPath returns the directory a named external repository
// materializes at. The repository may not have been fetched yet;
// callers that need the contents should stat the result.
func (w *Workspace) RepositoryPath(repo string) string {
	return filepath.Join(w.ExternalRoot(), repo)
}

// RepositoryFor reports which repository a path belongs to: the
// repository name ("" for the main repository) and the path relative
// to that repository's root. ok is false for paths in neither the
// workspace nor any external repository.
func (w *Workspace) RepositoryFor(path string) (repo, relative string, ok bool) {
	if relative, under := pathUnder(w.ExternalRoot(), path); under {
		repo, rest, _ := strings.Cut(relative, string(filepath.Separator))
		return repo, rest, true
	}
	if relative, under := pathUnder(w.Root, path); under {
		return "", relative, true
	}
	return "", "", false
}

// RepositoryNames lists the external repositories that have
// materialized on disk. A workspace where bazel has not fetched
// anything yet has none; that is not an error.
func (w *Workspace) RepositoryNames() ([]string, error) {
	entries, err := os.ReadDir(w.ExternalRoot())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// pathUnder reports whether path is strictly inside root, and the
// remainder relative to root if so.
func pathUnder(root, path string) (string, bool) {
	relative, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	if relative == "." || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", false
	}
	return relative, true
}
