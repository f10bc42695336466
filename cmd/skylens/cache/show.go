// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
)

// showParams holds the parameters for the cache show command.
type showParams struct {
	cli.JSONOutput
	diskParams
}

// ShowCommand returns the "skylens cache show" command.
func ShowCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Decode one stored entry",
		Description: `Print a stored entry's envelope and its payload in CBOR diagnostic
notation. Scope and name are the first two columns "skylens cache
list" prints.`,
		Usage: "skylens cache show <scope> <name> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return cli.Validation("expected <scope> <name> arguments, got %d", len(args))
			}
			return runShow(params, args[0], args[1], logger)
		},
	}
}

// showOutput is the decoded entry for JSON output.
type showOutput struct {
	Scope   string    `json:"scope"`
	Name    string    `json:"name"`
	Version int       `json:"version"`
	Created time.Time `json:"created"`
	Payload string    `json:"payload"`
}

func runShow(params showParams, scope, name string, logger *slog.Logger) error {
	disk, err := params.open(logger)
	if err != nil {
		return err
	}
	description, err := disk.Describe(scope, name)
	if errors.Is(err, fs.ErrNotExist) {
		return cli.NotFound("no cache entry %s/%s", scope, name).
			WithHint("Run 'skylens cache list' to see what is stored.")
	}
	if err != nil {
		return err
	}

	if done, err := params.EmitJSON(showOutput{
		Scope:   scope,
		Name:    name,
		Version: description.Version,
		Created: description.Created,
		Payload: description.Payload,
	}); done {
		return err
	}

	fmt.Printf("scope:    %s\n", scope)
	fmt.Printf("name:     %s\n", name)
	fmt.Printf("version:  %d\n", description.Version)
	fmt.Printf("created:  %s\n", description.Created.Format(time.RFC3339))
	fmt.Printf("payload:  %s\n", description.Payload)
	return nil
}
