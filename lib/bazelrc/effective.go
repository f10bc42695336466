// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package bazelrc

import (
	"fmt"
	"strings"
)

// commandInheritance maps each bazel command to the groups it inherits
// options from, least specific first. Commands not listed inherit only
// from common.
var commandInheritance = map[string][]string{
	"build":    {"common"},
	"test":     {"common", "build"},
	"run":      {"common", "build"},
	"coverage": {"common", "build", "test"},
	"cquery":   {"common", "build"},
	"aquery":   {"common", "build"},
	"mod":      {"common"},
	"query":    {"common"},
	"fetch":    {"common"},
	"sync":     {"common"},
	"clean":    {"common"},
	"info":     {"common"},
}

// commandChain returns the groups contributing options to command,
// least specific first, ending with the command itself.
func commandChain(command string) []string {
	inherited, ok := commandInheritance[command]
	if !ok {
		inherited = []string{"common"}
	}
	return append(append([]string{}, inherited...), command)
}

// Effective computes the flags bazel would apply when running command
// with the given --config groups, in application order:
//
//  1. Unconditional directives for the command's inheritance chain
//     (common first, then each inherited group, then the command).
//  2. The platform config group (named after the OS: "linux",
//     "macos", "windows"), when --enable_platform_specific_config is
//     set by step 1. It behaves as if --config=<platform> were passed
//     before all other configs.
//  3. Each requested config group in order, walking the same chain.
//
// A --config=name flag inside a group expands recursively at its
// position. Requesting a config that no directive defines is an
// error, matching bazel; an undefined platform group is silently
// skipped.
func (f *File) Effective(command string, configs []string, platform string) ([]string, error) {
	chain := commandChain(command)

	var flags []string
	for _, group := range chain {
		for _, line := range f.Lines {
			if line.Command == group && line.Config == "" {
				expanded, err := f.expandArgs(line.Args, chain, make(map[string]bool))
				if err != nil {
					return nil, err
				}
				flags = append(flags, expanded...)
			}
		}
	}

	if platform != "" && Enabled(flags, "enable_platform_specific_config") {
		platformFlags, found, err := f.configFlags(platform, chain, make(map[string]bool))
		if err != nil {
			return nil, err
		}
		if found {
			flags = append(flags, platformFlags...)
		}
	}

	for _, config := range configs {
		configFlags, found, err := f.configFlags(config, chain, make(map[string]bool))
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("config value %q is not defined in %s", config, f.Path)
		}
		flags = append(flags, configFlags...)
	}
	return flags, nil
}

// configFlags collects the flags a config group contributes for the
// given command chain. found reports whether any directive defines the
// group at all.
func (f *File) configFlags(config string, chain []string, expanding map[string]bool) ([]string, bool, error) {
	if expanding[config] {
		return nil, false, fmt.Errorf("config %q expands to itself (cycle)", config)
	}
	expanding[config] = true
	defer delete(expanding, config)

	var flags []string
	found := false
	for _, group := range chain {
		for _, line := range f.Lines {
			if line.Command == group && line.Config == config {
				found = true
				expanded, err := f.expandArgs(line.Args, chain, expanding)
				if err != nil {
					return nil, false, err
				}
				flags = append(flags, expanded...)
			}
		}
	}
	return flags, found, nil
}

// expandArgs copies args, replacing each --config=name flag with the
// flags that group contributes.
func (f *File) expandArgs(args []string, chain []string, expanding map[string]bool) ([]string, error) {
	var expanded []string
	for _, arg := range args {
		name, ok := strings.CutPrefix(arg, "--config=")
		if !ok {
			expanded = append(expanded, arg)
			continue
		}
		nested, found, err := f.configFlags(name, chain, expanding)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("config value %q is not defined in %s", name, f.Path)
		}
		expanded = append(expanded, nested...)
	}
	return expanded, nil
}

// Value returns the value of the last --name=value flag in flags.
func Value(flags []string, name string) (string, bool) {
	prefix := "--" + name + "="
	value, found := "", false
	for _, flag := range flags {
		if v, ok := strings.CutPrefix(flag, prefix); ok {
			value, found = v, true
		}
	}
	return value, found
}

// Enabled reports the state of a boolean flag, honoring the --name,
// --name=true/false, and --noname spellings. The last occurrence
// wins. Flags never mentioned report false.
func Enabled(flags []string, name string) bool {
	enabled := false
	for _, flag := range flags {
		switch {
		case flag == "--"+name, flag == "--"+name+"=true", flag == "--"+name+"=yes", flag == "--"+name+"=1":
			enabled = true
		case flag == "--no"+name, flag == "--"+name+"=false", flag == "--"+name+"=no", flag == "--"+name+"=0":
			enabled = false
		}
	}
	return enabled
}
