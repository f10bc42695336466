// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"errors"
	"fmt"

	"go.starlark.net/syntax"
)

// Severity ranks a Diagnostic.
type Severity int

const (
	// SeverityError marks code bazel would reject.
	SeverityError Severity = iota
	// SeverityWarning marks code that parses but is suspect.
	SeverityWarning
)

// String returns "error" or "warning".
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic codes.
const (
	// CodeSyntax marks parse errors.
	CodeSyntax = "syntax"
	// CodeResolve marks structural errors found after parsing, like
	// reassigned load bindings.
	CodeResolve = "resolve"
	// CodeUndefinedGlobal marks identifiers neither the file nor the
	// build language defines.
	CodeUndefinedGlobal = "undefined-global"
	// CodeMisplacedLoad marks load statements below the first real
	// statement.
	CodeMisplacedLoad = "misplaced-load"
	// CodeUnusedLoad marks load bindings nothing in the file uses.
	CodeUnusedLoad = "unused-load"
)

// Position is a 1-based line and column in a source file.
type Position struct {
	Line int
	Col  int
}

// Diagnostic is one finding in a file.
type Diagnostic struct {
	Path     string
	Start    Position
	End      Position
	Severity Severity
	Code     string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s (%s)", d.Path, d.Start.Line, d.Start.Col, d.Severity, d.Message, d.Code)
}

// Document is a parsed Starlark file.
type Document struct {
	Path string
	Type FileType

	// File is the syntax tree, nil when parsing failed outright.
	File *syntax.File
}

// dialect returns the parse options for the Bazel Starlark dialect:
// no while loops, no top-level control flow, single assignment of
// globals, module-scoped load bindings. Sets are allowed; newer bazel
// versions ship them and an editor tool should not be stricter than
// the build.
func dialect() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:               true,
		While:             false,
		TopLevelControl:   false,
		GlobalReassign:    false,
		LoadBindsGlobally: false,
		Recursion:         false,
	}
}

// Parse parses content as the Starlark dialect for path's file type.
// Parse errors come back as diagnostics rather than an error: a
// half-typed file in an editor is the normal case, not a failure.
// The Document is usable when File is non-nil.
func Parse(path string, content []byte) (*Document, []Diagnostic) {
	document := &Document{
		Path: path,
		Type: FileTypeOf(path),
	}

	file, err := dialect().Parse(path, content, 0)
	if err != nil {
		return document, syntaxDiagnostics(path, err)
	}
	document.File = file
	return document, nil
}

// syntaxDiagnostics converts a parse error into diagnostics.
func syntaxDiagnostics(path string, err error) []Diagnostic {
	var syntaxErr syntax.Error
	if errors.As(err, &syntaxErr) {
		return []Diagnostic{{
			Path:     path,
			Start:    position(syntaxErr.Pos),
			End:      position(syntaxErr.Pos),
			Severity: SeverityError,
			Code:     CodeSyntax,
			Message:  syntaxErr.Msg,
		}}
	}
	return []Diagnostic{{
		Path:     path,
		Start:    Position{Line: 1, Col: 1},
		End:      Position{Line: 1, Col: 1},
		Severity: SeverityError,
		Code:     CodeSyntax,
		Message:  err.Error(),
	}}
}

func position(pos syntax.Position) Position {
	return Position{Line: int(pos.Line), Col: int(pos.Col)}
}
