// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"github.com/skylens-build/skylens/lib/bazel"
	"github.com/skylens-build/skylens/lib/builtins"
	"github.com/skylens-build/skylens/lib/cache"
	"github.com/skylens-build/skylens/lib/resolve"
	"github.com/skylens-build/skylens/lib/settings"
)

// ResolverConfig is an embeddable params struct for commands that
// construct a resolver. Embedding it provides the --bazel and
// --cache-dir flags via [BindFlags] and the [ResolverConfig.NewResolver]
// constructor. Flags left empty fall back to the global settings
// file, then to the built-in defaults.
type ResolverConfig struct {
	Bazel    string `flag:"bazel" desc:"bazel binary to invoke (default: bazel or bazelisk from PATH)"`
	CacheDir string `flag:"cache-dir" desc:"directory for the persistent resolution cache"`
}

// Runner returns a bazel runner for the configured binary. When no
// binary can be found the runner degrades rather than failing:
// every bazel call reports the lookup error, and the resolver
// answers what it can from the workspace tree and the fallback
// builtins catalog.
func (c *ResolverConfig) Runner(logger *slog.Logger) bazel.Runner {
	return c.runner(c.globalSettings(logger), logger)
}

func (c *ResolverConfig) runner(global settings.Settings, logger *slog.Logger) bazel.Runner {
	binary := c.Bazel
	if binary == "" {
		binary = global.Bazel
	}
	client, err := bazel.NewClient(bazel.Options{Binary: binary})
	if err != nil {
		logger.Warn("bazel unavailable, continuing without it", "error", err)
		return bazel.Unavailable(err)
	}
	logger.Debug("using bazel", "binary", client.Binary())
	return client
}

// NewResolver builds the resolver commands share: a bazel runner from
// the config, the persistent disk cache, and a fallback builtins
// catalog from the settings-configured snapshot when one is set. A
// cache directory that cannot be opened is logged and skipped;
// resolution still works, it just pays the bazel invocations again
// next process.
func (c *ResolverConfig) NewResolver(logger *slog.Logger) (*resolve.Resolver, error) {
	global := c.globalSettings(logger)

	cacheDir := c.CacheDir
	if cacheDir == "" {
		cacheDir = global.CacheDir
	}
	disk, err := cache.Open(cache.Options{Dir: cacheDir, Logger: logger})
	if err != nil {
		logger.Warn("resolution cache unavailable", "error", err)
	}

	options := resolve.Options{Runner: c.runner(global, logger), Disk: disk, Logger: logger}
	if global.Builtins != "" {
		catalog, err := snapshotCatalog(global.Builtins)
		if err != nil {
			logger.Warn("builtins snapshot unusable, keeping the embedded catalog",
				"path", global.Builtins, "error", err)
		} else {
			options.Builtins = catalog
		}
	}
	return resolve.New(options)
}

func (c *ResolverConfig) globalSettings(logger *slog.Logger) settings.Settings {
	global, path, err := settings.Global()
	if err != nil {
		logger.Warn("global settings unreadable", "path", path, "error", err)
		return settings.Settings{}
	}
	return global
}

// snapshotCatalog loads a build-language snapshot written by
// `skylens builtins snapshot`.
func snapshotCatalog(path string) (*builtins.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rules, err := builtins.DecodeRules(data)
	if err != nil {
		return nil, err
	}
	return builtins.New(rules)
}
