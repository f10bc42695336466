// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
)

// listParams holds the parameters for the cache list command.
type listParams struct {
	cli.JSONOutput
	diskParams
}

// ListCommand returns the "skylens cache list" command.
func ListCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the stored entries with their scope, size, and age",
		Usage:   "skylens cache list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runList(params, logger)
		},
	}
}

// listEntry is one row of the list output.
type listEntry struct {
	Scope    string    `json:"scope"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func runList(params listParams, logger *slog.Logger) error {
	disk, err := params.open(logger)
	if err != nil {
		return err
	}
	entries, err := disk.Entries()
	if err != nil {
		return err
	}

	rows := make([]listEntry, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, listEntry{
			Scope:    entry.Scope,
			Name:     entry.Name,
			Size:     entry.Size,
			Modified: entry.ModTime,
		})
	}
	if done, err := params.EmitJSON(rows); done {
		return err
	}

	now := time.Now()
	for _, row := range rows {
		fmt.Printf("%-16s %s %10s %s\n", row.Scope, row.Name, formatSize(row.Size), formatAge(now.Sub(row.Modified)))
	}
	fmt.Printf("%d entries, %s\n", len(rows), disk.Dir())
	return nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	}
}
