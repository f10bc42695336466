// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"os"
	"strings"

	"github.com/skylens-build/skylens/cmd/skylens/cli"
)

// PrintChecklist prints check results as a human-readable checklist.
// Failing checks that carry a hint get the hint printed underneath.
// Returns an ExitError with code 1 when any check failed, so the
// process exit code reflects the overall outcome.
func PrintChecklist(results []Result) error {
	anyFailed := false

	for _, result := range results {
		prefix := strings.ToUpper(string(result.Status))
		fmt.Fprintf(os.Stdout, "[%-5s]  %-40s  %s\n", prefix, result.Name, result.Message)

		if result.Status == StatusFail {
			anyFailed = true
			if result.Hint != "" {
				fmt.Fprintf(os.Stdout, "         %-40s  hint: %s\n", "", result.Hint)
			}
		}
	}

	fmt.Fprintln(os.Stdout)

	if anyFailed {
		fmt.Fprintln(os.Stdout, "Some checks failed.")
		return &cli.ExitError{Code: 1}
	}

	fmt.Fprintln(os.Stdout, "All checks passed.")
	return nil
}
