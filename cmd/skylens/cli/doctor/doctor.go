// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor provides the checklist plumbing for the skylens
// doctor command: check results, status constructors, and the
// human-readable and JSON renderings. Checks are read-only; the
// command diagnoses and points at fixes, it never applies them.
package doctor

// Status is the outcome of a single health check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
	StatusSkip Status = "skip"
)

// Result holds the outcome of a single health check. Failures may
// carry a Hint describing how to fix the problem by hand.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Pass creates a passing check result.
func Pass(name, message string) Result {
	return Result{Name: name, Status: StatusPass, Message: message}
}

// Fail creates a failing check result.
func Fail(name, message string) Result {
	return Result{Name: name, Status: StatusFail, Message: message}
}

// FailWithHint creates a failing check result with manual fix guidance.
func FailWithHint(name, message, hint string) Result {
	return Result{Name: name, Status: StatusFail, Message: message, Hint: hint}
}

// Warn creates a warning check result. Warnings do not cause the doctor
// command to exit with a non-zero status.
func Warn(name, message string) Result {
	return Result{Name: name, Status: StatusWarn, Message: message}
}

// Skip creates a skipped check result. Checks are skipped when a
// prerequisite check failed (e.g., workspace checks skip when no
// workspace was found).
func Skip(name, message string) Result {
	return Result{Name: name, Status: StatusSkip, Message: message}
}

// JSONOutput is the JSON output structure for the doctor command.
type JSONOutput struct {
	Checks []Result `json:"checks"`
	OK     bool     `json:"ok"`
}

// BuildJSON assembles the JSON output for a completed check run.
func BuildJSON(results []Result) JSONOutput {
	output := JSONOutput{Checks: results, OK: true}
	if output.Checks == nil {
		output.Checks = []Result{}
	}
	for _, result := range results {
		if result.Status == StatusFail {
			output.OK = false
		}
	}
	return output
}
