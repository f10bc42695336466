// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package settings loads skylens's own configuration: a global YAML
// file with machine-level defaults and an optional per-workspace
// skylens.json checked into the repository.
//
// Precedence is command-line flag, then workspace file, then global
// file, then built-in default; commands apply it by overlaying the
// workspace settings on the global ones and letting explicit flags
// win. Both files are optional. SKYLENS_CONFIG overrides the global
// file path and must exist when set, so a misspelled override fails
// loudly instead of silently falling back.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override settings values.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// WorkspaceFile is the name of the per-workspace settings file,
// looked up at the workspace root.
const WorkspaceFile = "skylens.json"

// Settings are the values skylens reads from its configuration
// files. The zero value means "nothing configured"; consumers fall
// back to their built-in defaults field by field.
type Settings struct {
	// Bazel is the bazel binary to invoke. In the workspace file a
	// relative path is resolved against the workspace root, so a
	// checked-in tools/bazel wrapper works from any directory.
	Bazel string `yaml:"bazel" json:"bazel"`

	// CacheDir is the directory for the persistent resolution cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Builtins is a build-language snapshot (written by `skylens
	// builtins snapshot`) to use as the fallback catalog when bazel
	// cannot be asked.
	Builtins string `yaml:"builtins" json:"builtins"`

	// Debounce is the file watcher quiet period, as a Go duration
	// string ("500ms", "2s").
	Debounce string `yaml:"debounce" json:"debounce"`
}

// Global loads the machine-level settings file: the path in
// SKYLENS_CONFIG when set, otherwise config.yaml under the user
// config directory. The returned path is where loading looked, for
// diagnostics; a missing default file is not an error.
func Global() (Settings, string, error) {
	if path := os.Getenv("SKYLENS_CONFIG"); path != "" {
		s, err := loadYAML(path)
		if err != nil {
			return Settings{}, path, fmt.Errorf("SKYLENS_CONFIG: %w", err)
		}
		return s, path, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Settings{}, "", nil
	}
	path := filepath.Join(configDir, "skylens", "config.yaml")
	s, err := loadYAML(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Settings{}, path, nil
	}
	if err != nil {
		return Settings{}, path, err
	}
	return s, path, nil
}

// Workspace loads the settings file at the given workspace root. The
// file is JSON extended with // line comments, /* block comments */,
// and trailing commas. A missing file yields zero settings; relative
// paths are resolved against root.
func Workspace(root string) (Settings, string, error) {
	path := filepath.Join(root, WorkspaceFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Settings{}, path, nil
	}
	if err != nil {
		return Settings{}, path, err
	}

	var s Settings
	if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
		return Settings{}, path, fmt.Errorf("%s: %w", path, err)
	}
	s.Bazel = resolveAgainst(root, s.Bazel)
	s.CacheDir = resolveAgainst(root, s.CacheDir)
	s.Builtins = resolveAgainst(root, s.Builtins)
	return s, path, nil
}

// Overlay returns s with every field that is set in over replaced by
// over's value.
func (s Settings) Overlay(over Settings) Settings {
	if over.Bazel != "" {
		s.Bazel = over.Bazel
	}
	if over.CacheDir != "" {
		s.CacheDir = over.CacheDir
	}
	if over.Builtins != "" {
		s.Builtins = over.Builtins
	}
	if over.Debounce != "" {
		s.Debounce = over.Debounce
	}
	return s
}

// DebounceDuration parses the Debounce field. An empty field returns
// zero with no error.
func (s Settings) DebounceDuration() (time.Duration, error) {
	if s.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Debounce)
	if err != nil {
		return 0, fmt.Errorf("debounce: %w", err)
	}
	return d, nil
}

func loadYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	s.Bazel = expandVars(s.Bazel)
	s.CacheDir = expandVars(s.CacheDir)
	s.Builtins = expandVars(s.Builtins)
	return s, nil
}

func resolveAgainst(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}
