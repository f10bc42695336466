// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package bazelrc

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
)

const deletedPackagesFlag = "--deleted_packages="

// deletedPackagesCommands are the commands that must each carry the
// directive: query does not inherit build options, so the list has to
// be stated twice.
var deletedPackagesCommands = []string{"build", "query"}

// DeletedPackages returns the --deleted_packages list. The directive
// must appear on both a build and a query line with identical values;
// a missing or diverged copy is an error, since bazel would silently
// apply different package sets to builds and queries. A file with no
// directive at all returns nil.
func (f *File) DeletedPackages() ([]string, error) {
	perCommand := make(map[string][]string)
	for _, line := range f.Lines {
		if line.Config != "" || !slices.Contains(deletedPackagesCommands, line.Command) {
			continue
		}
		for _, arg := range line.Args {
			if value, ok := strings.CutPrefix(arg, deletedPackagesFlag); ok {
				perCommand[line.Command] = splitPackages(value)
			}
		}
	}

	if len(perCommand) == 0 {
		return nil, nil
	}
	for _, command := range deletedPackagesCommands {
		if _, ok := perCommand[command]; !ok {
			return nil, fmt.Errorf("%s: --deleted_packages is missing on the %q line (present on %s)",
				f.Path, command, strings.Join(presentCommands(perCommand), ", "))
		}
	}
	build, query := perCommand["build"], perCommand["query"]
	if !slices.Equal(build, query) {
		return nil, fmt.Errorf("%s: --deleted_packages lists diverged: build has %d entries, query has %d; regenerate them together",
			f.Path, len(build), len(query))
	}
	return build, nil
}

func presentCommands(perCommand map[string][]string) []string {
	commands := make([]string, 0, len(perCommand))
	for command := range perCommand {
		commands = append(commands, command)
	}
	sort.Strings(commands)
	return commands
}

func splitPackages(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}

// UpdateDeletedPackages rewrites the --deleted_packages value on the
// build and query lines of the bazelrc at path, preserving the rest
// of the file byte for byte. Lines that do not exist yet are
// appended. The file is replaced atomically, so a crash cannot leave
// a half-written bazelrc behind.
func UpdateDeletedPackages(path string, packages []string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	value := strings.Join(packages, ",")
	lines := strings.Split(string(content), "\n")
	updated := make(map[string]bool)

	for i, line := range lines {
		command, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		if !slices.Contains(deletedPackagesCommands, command) {
			continue
		}
		start := strings.Index(line, deletedPackagesFlag)
		if start < 0 {
			continue
		}
		start += len(deletedPackagesFlag)
		end := start
		for end < len(line) && line[end] != ' ' && line[end] != '\t' {
			end++
		}
		lines[i] = line[:start] + value + line[end:]
		updated[command] = true
	}

	var appended []string
	for _, command := range deletedPackagesCommands {
		if !updated[command] {
			appended = append(appended, command+" "+deletedPackagesFlag+value)
		}
	}
	if len(appended) > 0 {
		// Keep a trailing newline after the appended block.
		for len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		lines = append(lines, appended...)
		lines = append(lines, "")
	}

	return renameio.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}

// workspaceMarkers are the files that make a directory the root of
// its own workspace.
var workspaceMarkers = []string{"WORKSPACE", "WORKSPACE.bazel", "WORKSPACE.bzlmod", "MODULE.bazel", "REPO.bazel"}

// buildFileNames are the files that make a directory a package.
var buildFileNames = []string{"BUILD", "BUILD.bazel"}

// ScanFixturePackages walks root for nested workspaces (directories
// below root carrying their own workspace marker file) and returns
// every package inside them, as slash-separated paths relative to
// root, sorted. These are the packages the surrounding workspace
// must hide via --deleted_packages: without the directive, bazel
// treats the fixtures' BUILD files as packages of the outer
// workspace.
//
// Hidden directories and bazel's convenience symlinks (bazel-*) are
// skipped.
func ScanFixturePackages(root string) ([]string, error) {
	var packages []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "bazel-")) {
			return filepath.SkipDir
		}
		if path == root || !hasAnyFile(path, workspaceMarkers) {
			return nil
		}

		// A nested workspace: collect its packages and do not
		// descend further from the outer walk (inner walk covers it,
		// including doubly nested workspaces).
		err = filepath.WalkDir(path, func(inner string, innerEntry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !innerEntry.IsDir() {
				return nil
			}
			if strings.HasPrefix(innerEntry.Name(), ".") {
				return filepath.SkipDir
			}
			if hasAnyFile(inner, buildFileNames) {
				relative, err := filepath.Rel(root, inner)
				if err != nil {
					return err
				}
				packages = append(packages, filepath.ToSlash(relative))
			}
			return nil
		})
		if err != nil {
			return err
		}
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(packages)
	return packages, nil
}

func hasAnyFile(dir string, names []string) bool {
	for _, name := range names {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
