// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package lint implements the skylens lint command: the language
// server's diagnostics as a batch tool, for CI and pre-commit hooks.
package lint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/analysis"
	"github.com/skylens-build/skylens/lib/resolve"
)

// lintTimeout bounds the bazel work behind catalog loading. Parsing
// and linting themselves are local and fast.
const lintTimeout = 30 * time.Second

// lintParams holds the parameters for the lint command.
type lintParams struct {
	cli.JSONOutput
	cli.ResolverConfig
}

// finding is the JSON shape of one lint result.
type finding struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	EndLine  int    `json:"end_line"`
	EndCol   int    `json:"end_col"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Command returns the "skylens lint" command.
func Command() *cli.Command {
	var params lintParams

	return &cli.Command{
		Name:    "lint",
		Summary: "Check Starlark files and exit non-zero on findings",
		Description: `Parse and lint BUILD, .bzl, WORKSPACE, and MODULE.bazel files with the
same checks the language server shows in the editor: syntax errors,
undefined names, misplaced and unused loads.

Name checks run against the workspace's own builtin catalog when
bazel is available, so a rule that exists in this workspace's bazel
version is never flagged. Exits 1 when any finding is reported.`,
		Usage: "skylens lint <file>... [flags]",
		Examples: []cli.Example{
			{
				Description: "Lint the build files touched by a change",
				Command:     "skylens lint lib/BUILD lib/defs.bzl",
			},
			{
				Description: "Machine-readable findings for CI annotation",
				Command:     "skylens lint --json $(git diff --name-only '*.bzl')",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("lint", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Validation("expected at least one file to lint")
			}
			return runLint(ctx, args, params, logger)
		},
	}
}

func runLint(ctx context.Context, paths []string, params lintParams, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, lintTimeout)
	defer cancel()

	resolver, err := params.NewResolver(logger)
	if err != nil {
		return err
	}

	var findings []analysis.Diagnostic
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cli.NotFound("no such file: %s", path)
			}
			return err
		}

		// Parse against the path as given so findings print the way
		// the user typed them; the catalog lookup needs the absolute
		// path to discover the owning workspace.
		parsed, diags := analysis.Parse(path, content)
		if parsed.File != nil {
			absPath, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			catalog := resolver.Catalog(ctx, absPath)
			diags = append(diags, parsed.Lint(catalog.Globals(parsed.Type))...)
		}
		findings = append(findings, diags...)
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}
		if findings[i].Start.Line != findings[j].Start.Line {
			return findings[i].Start.Line < findings[j].Start.Line
		}
		return findings[i].Start.Col < findings[j].Start.Col
	})

	if done, err := params.EmitJSON(toFindings(findings)); done {
		if err != nil {
			return err
		}
		if len(findings) > 0 {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}

	for _, diag := range findings {
		fmt.Println(diag.String())
	}
	if len(findings) > 0 {
		fmt.Printf("%d finding(s) in %d file(s).\n", len(findings), len(paths))
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func toFindings(diags []analysis.Diagnostic) []finding {
	findings := make([]finding, 0, len(diags))
	for _, diag := range diags {
		findings = append(findings, finding{
			Path:     diag.Path,
			Line:     diag.Start.Line,
			Col:      diag.Start.Col,
			EndLine:  diag.End.Line,
			EndCol:   diag.End.Col,
			Severity: diag.Severity.String(),
			Code:     diag.Code,
			Message:  diag.Message,
		})
	}
	return findings
}
