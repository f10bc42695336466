// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
	"github.com/skylens-build/skylens/lib/analysis"
	"github.com/skylens-build/skylens/lib/builtins"
)

// showParams holds the parameters for the builtins show command.
type showParams struct {
	cli.JSONOutput
	cli.ResolverConfig
	Type string `flag:"type" default:"build" desc:"file dialect the name is used in: build, bzl, workspace, module"`
}

// symbolResult is the JSON shape of one catalog symbol.
type symbolResult struct {
	Name       string               `json:"name"`
	Kind       string               `json:"kind"`
	Callable   bool                 `json:"callable,omitempty"`
	Doc        string               `json:"doc,omitempty"`
	Attributes []builtins.Attribute `json:"attributes,omitempty"`
	Params     []builtins.Param     `json:"params,omitempty"`
}

// ShowCommand returns the "skylens builtins show" command.
func ShowCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Document a builtin, or list what a dialect offers",
		Description: `Look a builtin name up in the catalog, the way hover does in the
editor: rule attributes for rules, signatures for globals. Run inside
a workspace, the catalog comes from that workspace's bazel, so the
answer matches the bazel version in use; elsewhere it comes from the
shipped snapshot.

With no name, lists every name the dialect has in scope.`,
		Usage: "skylens builtins show [name] [flags]",
		Examples: []cli.Example{
			{
				Description: "Document cc_library as BUILD files see it",
				Command:     "skylens builtins show cc_library",
			},
			{
				Description: "Everything in scope in a .bzl file",
				Command:     "skylens builtins show --type bzl",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("expected at most one builtin name, got %d arguments", len(args))
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runShow(ctx, name, params, logger)
		},
	}
}

func runShow(ctx context.Context, name string, params showParams, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	fileType, err := parseFileType(params.Type)
	if err != nil {
		return err
	}
	resolver, err := params.NewResolver(logger)
	if err != nil {
		return err
	}

	// Anchor catalog loading at the current directory so the lookup
	// uses the surrounding workspace's bazel when there is one.
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	catalog := resolver.Catalog(ctx, filepath.Join(cwd, "BUILD"))

	if name == "" {
		symbols := catalog.Symbols(fileType)
		if done, err := params.EmitJSON(toResults(symbols)); done {
			return err
		}
		for _, symbol := range symbols {
			fmt.Printf("%-30s %s\n", symbol.Name, symbol.Kind)
		}
		return nil
	}

	symbol, ok := catalog.Lookup(name, fileType)
	if !ok {
		return cli.NotFound("%s is not a builtin in %s files", name, fileType)
	}
	if done, err := params.EmitJSON(toResult(symbol)); done {
		return err
	}
	fmt.Println(symbol.Markdown())
	return nil
}

// parseFileType maps the --type flag to a dialect.
func parseFileType(name string) (analysis.FileType, error) {
	switch name {
	case "build":
		return analysis.FileTypeBuild, nil
	case "bzl":
		return analysis.FileTypeBzl, nil
	case "workspace":
		return analysis.FileTypeWorkspace, nil
	case "module":
		return analysis.FileTypeModule, nil
	}
	return analysis.FileTypeUnknown, cli.Validation("unknown file type %q (build, bzl, workspace, module)", name)
}

func toResult(symbol builtins.Symbol) symbolResult {
	return symbolResult{
		Name:       symbol.Name,
		Kind:       symbol.Kind.String(),
		Callable:   symbol.Callable,
		Doc:        symbol.Doc,
		Attributes: symbol.Attributes,
		Params:     symbol.Params,
	}
}

func toResults(symbols []builtins.Symbol) []symbolResult {
	results := make([]symbolResult, 0, len(symbols))
	for _, symbol := range symbols {
		results = append(results, toResult(symbol))
	}
	return results
}
