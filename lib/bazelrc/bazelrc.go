// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package bazelrc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Line is one parsed bazelrc directive.
type Line struct {
	// Command is the bazel command the directive applies to ("build",
	// "common", "startup", ...), or "import" / "try-import" for
	// import directives.
	Command string

	// Config is the config group name from a "command:config" prefix.
	// Empty for unconditional directives.
	Config string

	// Args are the tokenized arguments, quotes removed.
	Args []string

	// Source is the file the line came from and Number its 1-based
	// line number there. Continuation lines report the first physical
	// line.
	Source string
	Number int
}

// File is a parsed bazelrc. After Load, Lines contains the directives
// of the root file and every imported file, flattened in evaluation
// order; import directives themselves are not retained.
type File struct {
	// Path is the root file.
	Path string

	// Lines are the directives in evaluation order.
	Lines []Line
}

// Parse parses a single bazelrc's content without resolving imports.
// The path is used in error messages and recorded on each Line.
func Parse(path string, content []byte) (*File, error) {
	file := &File{Path: path}

	physical := strings.Split(string(content), "\n")
	for i := 0; i < len(physical); i++ {
		number := i + 1
		logical := physical[i]
		for strings.HasSuffix(logical, "\\") && i+1 < len(physical) {
			logical = logical[:len(logical)-1] + " " + physical[i+1]
			i++
		}

		tokens, err := tokenize(logical)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, number, err)
		}
		if len(tokens) == 0 {
			continue
		}

		command, config, hasConfig := strings.Cut(tokens[0], ":")
		if command == "" {
			return nil, fmt.Errorf("%s:%d: missing command before %q", path, number, tokens[0])
		}
		if hasConfig && config == "" {
			return nil, fmt.Errorf("%s:%d: empty config name in %q", path, number, tokens[0])
		}
		if (command == "import" || command == "try-import") && hasConfig {
			return nil, fmt.Errorf("%s:%d: %s does not take a config suffix", path, number, command)
		}

		file.Lines = append(file.Lines, Line{
			Command: command,
			Config:  config,
			Args:    tokens[1:],
			Source:  path,
			Number:  number,
		})
	}
	return file, nil
}

// Load reads the bazelrc at path and recursively resolves import and
// try-import directives. workspaceRoot replaces the %workspace% token
// in import paths. A missing file is an error for import and silently
// skipped for try-import, matching bazel.
func Load(path, workspaceRoot string) (*File, error) {
	visited := make(map[string]bool)
	lines, err := load(path, workspaceRoot, visited)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Lines: lines}, nil
}

func load(path, workspaceRoot string, visited map[string]bool) ([]Line, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if visited[absolute] {
		return nil, fmt.Errorf("%s: import cycle", path)
	}
	visited[absolute] = true

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := Parse(path, content)
	if err != nil {
		return nil, err
	}

	var lines []Line
	for _, line := range parsed.Lines {
		if line.Command != "import" && line.Command != "try-import" {
			lines = append(lines, line)
			continue
		}
		if len(line.Args) != 1 {
			return nil, fmt.Errorf("%s:%d: %s takes exactly one path", line.Source, line.Number, line.Command)
		}

		target := strings.ReplaceAll(line.Args[0], "%workspace%", workspaceRoot)
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}

		imported, err := load(target, workspaceRoot, visited)
		if err != nil {
			if line.Command == "try-import" && os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%s:%d: %s %s: %w", line.Source, line.Number, line.Command, line.Args[0], err)
		}
		lines = append(lines, imported...)
	}
	return lines, nil
}

// tokenize splits a bazelrc line into arguments. Single and double
// quotes group spaces into one token; a backslash escapes the next
// character outside single quotes. An unquoted '#' starts a comment
// running to end of line.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false

	flush := func() {
		if inToken {
			tokens = append(tokens, current.String())
			current.Reset()
			inToken = false
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case ' ', '\t', '\r':
			flush()
		case '#':
			flush()
			return tokens, nil
		case '\'', '"':
			quote := r
			inToken = true
			i++
			for {
				if i >= len(runes) {
					return nil, fmt.Errorf("unterminated %q quote", string(quote))
				}
				if runes[i] == quote {
					break
				}
				if quote == '"' && runes[i] == '\\' && i+1 < len(runes) {
					i++
				}
				current.WriteRune(runes[i])
				i++
			}
		case '\\':
			if i+1 < len(runes) {
				i++
				current.WriteRune(runes[i])
				inToken = true
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return tokens, nil
}
