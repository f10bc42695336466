// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/skylens-build/skylens/lib/analysis"
	"github.com/skylens-build/skylens/lib/bazelrc"
	"github.com/skylens-build/skylens/lib/label"
	"github.com/skylens-build/skylens/lib/workspace"
)

// StringKind says where the string being completed appears, which
// decides whether plain files and rule targets make sense in it.
type StringKind int

const (
	// StringAny is a string literal in any position, like a srcs or
	// deps element.
	StringAny StringKind = iota

	// StringLoadPath is the module argument of a load statement; only
	// .bzl files can be loaded.
	StringLoadPath
)

// CompletionKind classifies a completion result.
type CompletionKind int

const (
	CompletionRepository CompletionKind = iota
	CompletionDirectory
	CompletionFile
	CompletionTarget
)

func (k CompletionKind) String() string {
	switch k {
	case CompletionRepository:
		return "repository"
	case CompletionDirectory:
		return "directory"
	case CompletionFile:
		return "file"
	case CompletionTarget:
		return "target"
	default:
		return "unknown"
	}
}

// Completion is one suggestion for the string under the cursor.
// Insert replaces the typed value from byte Offset on, so a value of
// "@rules_rust" with Insert "@rules_rust//" and Offset 0 completes
// the repository and the following slashes in one step.
type Completion struct {
	Value  string
	Insert string
	Offset int
	Kind   CompletionKind
}

// Completions suggests continuations for a partially typed label.
// What gets offered follows from the separators typed so far:
//
//	""             repositories, plus files and directories next to fromFile
//	"@rules"       repositories only, still typing the name
//	"@rules_go//"  directories under the repository root
//	"//foo/"       directories under foo
//	"//foo:"       files in foo, and rule targets when kind allows
//
// Directories for packages listed in the workspace's
// --deleted_packages are withheld, mirroring how bazel hides them
// from wildcard patterns. Resolution is unaffected; the files exist.
func (r *Resolver) Completions(ctx context.Context, fromFile string, kind StringKind, value string) ([]Completion, error) {
	root, ws := r.workspaceFor(ctx, fromFile)

	var results []Completion

	offerRepositories := (strings.HasPrefix(value, "@") && !strings.Contains(value, "/")) ||
		(!strings.Contains(value, "/") && !strings.Contains(value, ":"))
	if offerRepositories && ws != nil {
		results = append(results, r.repositoryCompletions(ctx, root, ws, fromFile)...)
	}

	completeDirectories := (!strings.HasPrefix(value, "@") || strings.Contains(value, "//")) &&
		!strings.Contains(value, ":")
	completeFilenames := (!strings.HasPrefix(value, "@") || strings.Contains(value, "//")) &&
		(!strings.Contains(value, "/") || strings.Contains(value, ":"))
	completeTargets := kind == StringAny && completeFilenames
	if !completeDirectories && !completeFilenames {
		return results, nil
	}

	var folder, base string
	if completeDirectories && completeFilenames {
		// No separator typed yet: the value is relative to the
		// document's own directory.
		if fromFile == "" {
			return results, nil
		}
		folder = filepath.Dir(fromFile)
	} else {
		separator := byte(':')
		if completeDirectories {
			separator = '/'
		}
		index := strings.LastIndexByte(value, separator)
		if index < 0 {
			return results, nil
		}
		base = value[:index+1]
		p, err := parseBase(base)
		if err != nil {
			r.logger.Debug("uncompletable label prefix", "base", base, "error", err)
			return results, nil
		}
		folder, err = r.packageDir(ctx, p, fromFile, root, ws)
		if err != nil {
			r.logger.Debug("label prefix does not resolve", "base", base, "error", err)
			return results, nil
		}
	}

	options := listOptions{
		directories: completeDirectories,
		targets:     completeTargets,
	}
	switch {
	case kind == StringLoadPath:
		options.files = filesLoadable
	case completeFilenames:
		options.files = filesAll
	default:
		options.files = filesNone
	}

	entries, err := r.listEntries(ctx, folder, base, options, root)
	if err != nil {
		// A prefix naming a repository or package that is not on disk
		// is routine while typing. The repositories already collected
		// are still worth showing.
		r.logger.Debug("listing completion folder failed", "folder", folder, "error", err)
		return results, nil
	}
	return append(results, entries...), nil
}

func (r *Resolver) repositoryCompletions(ctx context.Context, root string, ws *workspace.Workspace, fromFile string) []Completion {
	var names []string
	if mapping := r.repoMapping(ctx, root, ws, fromFile); mapping != nil {
		for name := range mapping {
			if name != "" {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	} else {
		// No mapping (workspace-rules bazel, or bazel unreachable):
		// fall back to whatever has materialized on disk.
		listed, err := ws.RepositoryNames()
		if err != nil {
			r.logger.Debug("listing external repositories failed", "error", err)
		}
		names = listed
	}

	completions := make([]Completion, 0, len(names))
	for _, name := range names {
		completions = append(completions, Completion{
			Value:  "@" + name,
			Insert: "@" + name + "//",
			Offset: 0,
			Kind:   CompletionRepository,
		})
	}
	return completions
}

// parseBase interprets a label prefix up to and including its last
// separator, the part that pins down the directory to list.
func parseBase(base string) (place, error) {
	switch {
	case base == ":":
		// Same-package target: list the current file's directory.
		return place{}, nil

	case strings.HasSuffix(base, "//"):
		prefix := strings.TrimSuffix(base, "//")
		if prefix == "" {
			return place{absolute: true}, nil
		}
		if !strings.HasPrefix(prefix, "@") {
			return place{}, fmt.Errorf("label prefix %q: %q before //", base, prefix)
		}
		name, canonical := strings.CutPrefix(strings.TrimPrefix(prefix, "@"), "@")
		return place{hasRepo: true, repo: name, canonical: canonical, absolute: true}, nil

	case strings.HasSuffix(base, ":"):
		pkg := base[:len(base)-1]
		if strings.HasSuffix(pkg, "//") {
			return parseBase(pkg)
		}
		if !strings.HasPrefix(pkg, "//") && !strings.HasPrefix(pkg, "@") {
			return place{}, fmt.Errorf("label prefix %q: ':' without a package", base)
		}
		lbl, err := label.Parse(pkg)
		if err != nil {
			return place{}, err
		}
		return placeOf(lbl), nil

	case strings.HasSuffix(base, "/"):
		trimmed := base[:len(base)-1]
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "@") {
			lbl, err := label.Parse(trimmed)
			if err != nil {
				return place{}, err
			}
			return placeOf(lbl), nil
		}
		// A bare directory prefix like "sub/" stays relative to the
		// current file.
		for _, segment := range strings.Split(trimmed, "/") {
			switch segment {
			case "", ".", "..":
				return place{}, fmt.Errorf("label prefix %q: segment %q", base, segment)
			}
		}
		return place{pkg: trimmed}, nil

	default:
		return place{}, fmt.Errorf("label prefix %q has no separator", base)
	}
}

type fileMode int

const (
	filesNone fileMode = iota
	filesLoadable
	filesAll
)

type listOptions struct {
	directories bool
	files       fileMode
	targets     bool
}

// listEntries turns a directory listing into completions. Build files
// are never offered by name; finding one instead triggers target
// completion for the package when options ask for it.
func (r *Resolver) listEntries(ctx context.Context, folder, base string, options listOptions, root string) ([]Completion, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	deleted := r.deletedPackages(root)

	var results []Completion
	for _, entry := range entries {
		name := entry.Name()
		// Stat through symlinks: fetched repositories are symlink
		// forests, and convenience symlinks point at directories.
		info, err := os.Stat(filepath.Join(folder, name))
		if err != nil {
			continue
		}

		if info.IsDir() {
			if !options.directories {
				continue
			}
			if isDeleted(deleted, root, filepath.Join(folder, name)) {
				continue
			}
			separator := "/"
			if base == "" || strings.HasSuffix(base, "/") {
				separator = ""
			}
			results = append(results, Completion{
				Value:  name,
				Insert: separator + name,
				Offset: len(base),
				Kind:   CompletionDirectory,
			})
			continue
		}

		if analysis.FileTypeOf(name) == analysis.FileTypeBuild {
			if options.targets {
				results = append(results, r.targetCompletions(ctx, base, root)...)
			}
			continue
		}
		if options.files == filesNone {
			continue
		}
		if options.files == filesLoadable && analysis.FileTypeOf(name) != analysis.FileTypeBzl {
			continue
		}
		separator := ":"
		if base == "" || strings.HasSuffix(base, ":") {
			separator = ""
		}
		results = append(results, Completion{
			Value:  name,
			Insert: separator + name,
			Offset: len(base),
			Kind:   CompletionFile,
		})
	}
	return results, nil
}

// targetCompletions asks bazel for the buildable targets of the
// package named by base. Query failures mean no suggestions, not an
// error: the package may simply not be loadable right now.
func (r *Resolver) targetCompletions(ctx context.Context, base, root string) []Completion {
	if root == "" {
		return nil
	}
	prefix := base
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	labels, err := r.runner.Query(ctx, root, prefix+"*")
	if err != nil {
		r.logger.Debug("target query failed", "pattern", prefix+"*", "error", err)
		return nil
	}

	separator := ":"
	if strings.HasSuffix(base, ":") {
		separator = ""
	}
	var results []Completion
	for _, line := range labels {
		target, ok := strings.CutPrefix(line, prefix)
		if !ok {
			continue
		}
		results = append(results, Completion{
			Value:  target,
			Insert: separator + target,
			Offset: len(base),
			Kind:   CompletionTarget,
		})
	}
	return results
}

// deletedPackages loads the workspace's --deleted_packages set, once
// per root. An unreadable or inconsistent bazelrc hides nothing.
func (r *Resolver) deletedPackages(root string) map[string]bool {
	if root == "" {
		return nil
	}
	r.mu.Lock()
	if set, ok := r.deleted[root]; ok {
		r.mu.Unlock()
		return set
	}
	r.mu.Unlock()

	set := make(map[string]bool)
	if rc, err := bazelrc.Load(filepath.Join(root, ".bazelrc"), root); err == nil {
		packages, err := rc.DeletedPackages()
		if err != nil {
			r.logger.Warn("deleted_packages directive unreadable", "root", root, "error", err)
		}
		for _, pkg := range packages {
			set[pkg] = true
		}
	}

	r.mu.Lock()
	r.deleted[root] = set
	r.mu.Unlock()
	return set
}

func isDeleted(deleted map[string]bool, root, dir string) bool {
	if len(deleted) == 0 || root == "" {
		return false
	}
	relative, ok := pathWithin(root, dir)
	if !ok {
		return false
	}
	return deleted[filepath.ToSlash(relative)]
}
