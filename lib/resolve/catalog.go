// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"

	"github.com/skylens-build/skylens/lib/builtins"
	"github.com/skylens-build/skylens/lib/cache"
	"github.com/skylens-build/skylens/lib/workspace"
)

// Catalog returns the build-language catalog for the bazel owning
// fromFile: rules decoded live from "bazel info build-language" when
// possible, the embedded snapshot otherwise. One catalog is built per
// bazel release and process; the disk cache carries decoded rules
// across processes so a restart does not re-invoke bazel.
//
// Catalog never fails. Whatever goes wrong, the embedded snapshot
// keeps completion, hover, and the undefined-global lint working.
func (r *Resolver) Catalog(ctx context.Context, fromFile string) *builtins.Catalog {
	_, ws := r.workspaceFor(ctx, fromFile)
	if ws == nil {
		return r.fallback
	}

	r.mu.Lock()
	if catalog, ok := r.catalogs[ws.Release]; ok {
		r.mu.Unlock()
		return catalog
	}
	r.mu.Unlock()

	catalog := r.buildCatalog(ctx, ws)

	r.mu.Lock()
	r.catalogs[ws.Release] = catalog
	r.mu.Unlock()
	return catalog
}

func (r *Resolver) buildCatalog(ctx context.Context, ws *workspace.Workspace) *builtins.Catalog {
	key := cache.NewKey(ws.Release)
	var rules []builtins.Rule
	if r.disk != nil {
		if found, err := r.disk.Get("build-language", key, &rules); err == nil && found {
			if catalog, err := builtins.New(rules); err == nil {
				return catalog
			}
		}
	}

	data, err := r.runner.BuildLanguage(ctx, ws.Root)
	if err != nil {
		r.logger.Warn("bazel build-language unavailable, using embedded snapshot",
			"release", ws.Release, "error", err)
		return r.fallback
	}
	rules, err = builtins.DecodeBuildLanguage(data)
	if err != nil {
		r.logger.Warn("build-language output undecodable, using embedded snapshot",
			"release", ws.Release, "error", err)
		return r.fallback
	}
	if r.disk != nil {
		if err := r.disk.Put("build-language", key, rules); err != nil {
			r.logger.Warn("persisting build-language snapshot failed", "error", err)
		}
	}

	catalog, err := builtins.New(rules)
	if err != nil {
		r.logger.Warn("assembling catalog failed, using embedded snapshot", "error", err)
		return r.fallback
	}
	return catalog
}
