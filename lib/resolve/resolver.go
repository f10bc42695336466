// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/skylens-build/skylens/lib/analysis"
	"github.com/skylens-build/skylens/lib/bazel"
	"github.com/skylens-build/skylens/lib/builtins"
	"github.com/skylens-build/skylens/lib/cache"
	"github.com/skylens-build/skylens/lib/label"
	"github.com/skylens-build/skylens/lib/workspace"
)

// Resolution failures callers are expected to branch on, via errors.Is.
var (
	// ErrMissingCurrentFile is returned for a relative label when no
	// current file was given to anchor it.
	ErrMissingCurrentFile = errors.New("relative label without a current file")

	// ErrUnknownRepository is returned when a label names a repository
	// and no workspace information is available to locate it.
	ErrUnknownRepository = errors.New("unknown repository")

	// ErrMissingWorkspaceRoot is returned for a workspace-absolute
	// label when no workspace root could be determined.
	ErrMissingWorkspaceRoot = errors.New("workspace root unknown")

	// ErrTargetNotFound is returned when a label resolves to a package
	// that holds neither the named file nor a build file.
	ErrTargetNotFound = errors.New("target file not found")
)

// Options configures a Resolver. Runner is required; everything else
// has a usable default.
type Options struct {
	// Runner invokes bazel.
	Runner bazel.Runner

	// Workspaces memoizes workspace layout per root. When nil the
	// Resolver creates its own cache over Runner; pass a shared one
	// when other components also hold workspace state.
	Workspaces *workspace.Cache

	// Disk persists expensive bazel outputs (build-language snapshots,
	// repository mappings) across processes. Nil disables persistence;
	// in-memory memoization still applies.
	Disk *cache.Cache

	// Builtins replaces the embedded fallback catalog, for setups
	// that carry their own build-language snapshot. Nil keeps the
	// embedded one.
	Builtins *builtins.Catalog

	Logger *slog.Logger
}

// Resolver answers label, path, and completion questions for any
// number of workspaces. Safe for concurrent use.
type Resolver struct {
	runner     bazel.Runner
	workspaces *workspace.Cache
	disk       *cache.Cache
	logger     *slog.Logger
	fallback   *builtins.Catalog

	mu       sync.Mutex
	mappings map[mappingKey]map[string]string
	catalogs map[string]*builtins.Catalog
	deleted  map[string]map[string]bool
}

type mappingKey struct {
	root string
	repo string
}

// New builds a Resolver. It fails only when the embedded builtins
// snapshot cannot be loaded, which means a broken build.
func New(options Options) (*Resolver, error) {
	if options.Runner == nil {
		return nil, errors.New("resolve: Options.Runner is required")
	}
	workspaces := options.Workspaces
	if workspaces == nil {
		workspaces = workspace.NewCache(options.Runner)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fallback := options.Builtins
	if fallback == nil {
		var err error
		fallback, err = builtins.Default()
		if err != nil {
			return nil, fmt.Errorf("load embedded builtins: %w", err)
		}
	}
	return &Resolver{
		runner:     options.Runner,
		workspaces: workspaces,
		disk:       options.Disk,
		logger:     logger,
		fallback:   fallback,
		mappings:   make(map[mappingKey]map[string]string),
		catalogs:   make(map[string]*builtins.Catalog),
		deleted:    make(map[string]map[string]bool),
	}, nil
}

// Invalidate drops cached state for the workspace rooted at root,
// forcing the next operation to consult bazel again. Call it when
// MODULE.bazel, WORKSPACE, or .bazelrc change.
func (r *Resolver) Invalidate(root string) {
	root = filepath.Clean(root)
	r.workspaces.Invalidate(root)

	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.mappings {
		if key.root == root {
			delete(r.mappings, key)
		}
	}
	delete(r.deleted, root)
}

// workspaceFor locates the workspace owning fromFile. The root comes
// from filesystem discovery and is available even when bazel is not;
// the *Workspace needs a successful "bazel info" and may be nil.
func (r *Resolver) workspaceFor(ctx context.Context, fromFile string) (string, *workspace.Workspace) {
	if fromFile == "" {
		return "", nil
	}
	root, err := workspace.DiscoverRoot(fromFile)
	if err != nil {
		return "", nil
	}
	ws, err := r.workspaces.Get(ctx, root)
	if err != nil {
		r.logger.Debug("workspace info unavailable", "root", root, "error", err)
		return root, nil
	}
	return root, ws
}

// repoMapping returns the apparent-to-canonical repository mapping as
// seen from fromFile, or nil when it cannot be obtained. Mappings are
// memoized per (workspace, requesting repository) and persisted to
// the disk cache keyed on the module files' identity, so an edit to
// MODULE.bazel naturally invalidates the persisted copy.
func (r *Resolver) repoMapping(ctx context.Context, root string, ws *workspace.Workspace, fromFile string) map[string]string {
	repo, _, ok := ws.RepositoryFor(fromFile)
	if !ok {
		repo = ""
	}
	key := mappingKey{root: root, repo: repo}

	r.mu.Lock()
	if mapping, ok := r.mappings[key]; ok {
		r.mu.Unlock()
		return mapping
	}
	r.mu.Unlock()

	var diskKey cache.Key
	var mapping map[string]string
	if r.disk != nil {
		diskKey = cache.NewKey(ws.Release, ws.OutputBase, repo, moduleStamp(root))
		if found, err := r.disk.Get("repo-mapping", diskKey, &mapping); err == nil && found {
			r.remember(key, mapping)
			return mapping
		}
	}

	mapping, err := r.runner.DumpRepoMapping(ctx, root, repo)
	if err != nil {
		r.logger.Debug("repository mapping unavailable", "root", root, "repo", repo, "error", err)
		return nil
	}
	r.remember(key, mapping)
	if r.disk != nil {
		if err := r.disk.Put("repo-mapping", diskKey, mapping); err != nil {
			r.logger.Warn("persisting repository mapping failed", "error", err)
		}
	}
	return mapping
}

func (r *Resolver) remember(key mappingKey, mapping map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[key] = mapping
}

// moduleStamp fingerprints the files that determine the repository
// mapping. Any edit changes the stamp and with it the disk cache key.
func moduleStamp(root string) string {
	var parts []string
	for _, name := range []string{"MODULE.bazel", "WORKSPACE", "WORKSPACE.bazel"} {
		info, err := os.Stat(filepath.Join(root, name))
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", name, info.Size(), info.ModTime().UnixNano()))
	}
	return strings.Join(parts, ";")
}

// place is the repository and package part of a label, the portion
// that determines which directory it resolves in.
type place struct {
	hasRepo   bool
	repo      string
	canonical bool
	absolute  bool
	pkg       string
}

func placeOf(l label.Label) place {
	return place{
		hasRepo:   l.HasRepo(),
		repo:      l.Repo(),
		canonical: l.IsCanonical(),
		absolute:  l.IsAbsolute(),
		pkg:       l.Package(),
	}
}

// packageDir resolves a place to the directory its package lives in.
// There are four roots to consider: the current repository inferred
// from fromFile, the main workspace, a repository matched by the
// legacy workspace name, and a remote repository reached through the
// repository mapping.
func (r *Resolver) packageDir(ctx context.Context, p place, fromFile, root string, ws *workspace.Workspace) (string, error) {
	var resolveRoot string
	switch {
	case p.hasRepo && p.repo == "":
		// "@//pkg" names the main repository explicitly.
		if ws != nil {
			resolveRoot = ws.Root
		} else {
			resolveRoot = root
		}
	case p.hasRepo:
		if ws == nil {
			return "", fmt.Errorf("repository %q: no workspace information: %w", p.repo, ErrUnknownRepository)
		}
		if ws.Name() != "" && ws.Name() == p.repo {
			resolveRoot = ws.Root
			break
		}
		canonical := p.repo
		if !p.canonical {
			if mapping := r.repoMapping(ctx, root, ws, fromFile); mapping != nil {
				if mapped, ok := mapping[p.repo]; ok {
					canonical = mapped
				}
			}
		}
		resolveRoot = ws.RepositoryPath(canonical)
	default:
		// No repository part. A file inside a fetched external
		// repository resolves against that repository's root, not the
		// main workspace.
		if ws != nil {
			if repo, _, ok := ws.RepositoryFor(fromFile); ok && repo != "" {
				resolveRoot = ws.RepositoryPath(repo)
			} else {
				resolveRoot = ws.Root
			}
		} else {
			resolveRoot = root
		}
	}

	if p.absolute {
		if resolveRoot == "" {
			return "", fmt.Errorf("label //%s: %w", p.pkg, ErrMissingWorkspaceRoot)
		}
		return filepath.Join(resolveRoot, filepath.FromSlash(p.pkg)), nil
	}
	if fromFile == "" {
		return "", ErrMissingCurrentFile
	}
	return filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(p.pkg)), nil
}

// ResolveLoad resolves a label to the file it names. When the package
// does not contain the named file, the package's build file stands in
// for it, which is where goto-definition on a target label lands.
func (r *Resolver) ResolveLoad(ctx context.Context, rawLabel, fromFile string) (string, error) {
	lbl, err := label.Parse(rawLabel)
	if err != nil {
		return "", err
	}
	root, ws := r.workspaceFor(ctx, fromFile)
	folder, err := r.packageDir(ctx, placeOf(lbl), fromFile, root, ws)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", lbl, err)
	}

	presumed := filepath.Join(folder, filepath.FromSlash(lbl.Name()))
	if isFile(presumed) {
		return presumed, nil
	}
	for _, name := range analysis.BuildFileNames {
		candidate := filepath.Join(folder, name)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("resolve %s: %w", lbl, ErrTargetNotFound)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// RenderAsLoad renders the label that names target, as it would be
// written in fromFile: the ":file" short form inside the same
// package, "//pkg:file" elsewhere in the main workspace, and
// "@repo//pkg:file" inside an external repository.
func (r *Resolver) RenderAsLoad(ctx context.Context, target, fromFile string) (string, error) {
	if fromFile != "" && filepath.Dir(target) == filepath.Dir(fromFile) {
		return ":" + filepath.Base(target), nil
	}

	anchor := fromFile
	if anchor == "" {
		anchor = target
	}
	root, ws := r.workspaceFor(ctx, anchor)

	if ws != nil {
		if repo, relative, ok := ws.RepositoryFor(target); ok && repo != "" {
			return renderLabel("@"+repo, filepath.ToSlash(relative)), nil
		}
	}
	base := root
	if ws != nil {
		base = ws.Root
	}
	if base != "" {
		if relative, ok := pathWithin(base, target); ok {
			return renderLabel("", filepath.ToSlash(relative)), nil
		}
	}
	return "", fmt.Errorf("render %s: path is outside the workspace", target)
}

// renderLabel formats repo + slash-relative file path as a label.
func renderLabel(repo, relative string) string {
	pkg := path.Dir(relative)
	if pkg == "." {
		pkg = ""
	}
	return fmt.Sprintf("%s//%s:%s", repo, pkg, path.Base(relative))
}

// pathWithin reports whether p is inside root, and the remainder.
func pathWithin(root, p string) (string, bool) {
	relative, err := filepath.Rel(root, p)
	if err != nil {
		return "", false
	}
	if relative == "." || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", false
	}
	return relative, true
}

// StringResolution is the destination of a string literal. When Rule
// is non-empty the literal names a target inside Path rather than the
// file itself, and the caller should locate the rule whose name
// attribute equals Rule.
type StringResolution struct {
	Path string
	Rule string
}

// ResolveStringLiteral resolves any label-shaped string, not just
// load paths. "//lib:codec" lands on lib's build file with Rule set
// to "codec"; "//lib:codec.bzl" lands on the file directly.
func (r *Resolver) ResolveStringLiteral(ctx context.Context, literal, fromFile string) (StringResolution, error) {
	resolved, err := r.ResolveLoad(ctx, literal, fromFile)
	if err != nil {
		return StringResolution{}, err
	}
	lbl, err := label.Parse(literal)
	if err != nil {
		return StringResolution{}, err
	}

	result := StringResolution{Path: resolved}
	if path.Base(lbl.Name()) != filepath.Base(resolved) {
		result.Rule = lbl.Name()
	}
	return result, nil
}
