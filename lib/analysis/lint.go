// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Lint reports semantic diagnostics. globals reports whether the
// build language defines a name for this file's type; nil disables
// the undefined-global check (the load lints still run). Lint each
// Document once: the resolver annotates the syntax tree in place.
func (d *Document) Lint(globals func(name string) bool) []Diagnostic {
	if d.File == nil {
		return nil
	}

	var diagnostics []Diagnostic
	if globals != nil {
		diagnostics = append(diagnostics, d.resolveDiagnostics(globals)...)
	}
	if d.Type != FileTypeWorkspace {
		// WORKSPACE files interleave loads with repository rules by
		// necessity; each load depends on the rules above it.
		diagnostics = append(diagnostics, d.misplacedLoads()...)
	}
	diagnostics = append(diagnostics, d.unusedLoads()...)
	return diagnostics
}

// resolveDiagnostics runs the Starlark resolver and converts its
// findings. Undefined identifiers get their own code so clients can
// style them distinctly from structural mistakes.
func (d *Document) resolveDiagnostics(globals func(name string) bool) []Diagnostic {
	err := resolve.File(d.File, globals, isUniversal)
	if err == nil {
		return nil
	}

	var list resolve.ErrorList
	if errors.As(err, &list) {
		diagnostics := make([]Diagnostic, 0, len(list))
		for _, resolveErr := range list {
			diagnostics = append(diagnostics, d.resolveDiagnostic(resolveErr))
		}
		return diagnostics
	}
	var single resolve.Error
	if errors.As(err, &single) {
		return []Diagnostic{d.resolveDiagnostic(single)}
	}
	return []Diagnostic{{
		Path:     d.Path,
		Start:    Position{Line: 1, Col: 1},
		End:      Position{Line: 1, Col: 1},
		Severity: SeverityError,
		Code:     CodeResolve,
		Message:  err.Error(),
	}}
}

func (d *Document) resolveDiagnostic(err resolve.Error) Diagnostic {
	code := CodeResolve
	if strings.HasPrefix(err.Msg, "undefined: ") {
		code = CodeUndefinedGlobal
	}
	return Diagnostic{
		Path:     d.Path,
		Start:    position(err.Pos),
		End:      position(err.Pos),
		Severity: SeverityError,
		Code:     code,
		Message:  err.Msg,
	}
}

func isUniversal(name string) bool {
	_, ok := starlark.Universe[name]
	return ok
}

// misplacedLoads warns about load statements below the first real
// statement. A leading docstring does not count as a statement.
func (d *Document) misplacedLoads() []Diagnostic {
	var diagnostics []Diagnostic
	seenOther := false
	for i, stmt := range d.File.Stmts {
		if load, ok := stmt.(*syntax.LoadStmt); ok {
			if seenOther {
				start, _ := load.Span()
				diagnostics = append(diagnostics, Diagnostic{
					Path:     d.Path,
					Start:    position(start),
					End:      position(start),
					Severity: SeverityWarning,
					Code:     CodeMisplacedLoad,
					Message:  "load statements should be at the top of the file",
				})
			}
			continue
		}
		if i == 0 && isDocString(stmt) {
			continue
		}
		seenOther = true
	}
	return diagnostics
}

func isDocString(stmt syntax.Stmt) bool {
	expr, ok := stmt.(*syntax.ExprStmt)
	if !ok {
		return false
	}
	literal, ok := expr.X.(*syntax.Literal)
	return ok && literal.Token == syntax.STRING
}

// unusedLoads warns about load bindings no other statement
// references.
func (d *Document) unusedLoads() []Diagnostic {
	used := make(map[string]bool)
	for _, stmt := range d.File.Stmts {
		if _, ok := stmt.(*syntax.LoadStmt); ok {
			continue
		}
		syntax.Walk(stmt, func(n syntax.Node) bool {
			if ident, ok := n.(*syntax.Ident); ok {
				used[ident.Name] = true
			}
			return true
		})
	}

	var diagnostics []Diagnostic
	for _, stmt := range d.File.Stmts {
		load, ok := stmt.(*syntax.LoadStmt)
		if !ok {
			continue
		}
		for _, to := range load.To {
			if used[to.Name] {
				continue
			}
			diagnostics = append(diagnostics, Diagnostic{
				Path:     d.Path,
				Start:    position(to.NamePos),
				End:      position(to.NamePos),
				Severity: SeverityWarning,
				Code:     CodeUnusedLoad,
				Message:  fmt.Sprintf("load of %q is unused", to.Name),
			})
		}
	}
	return diagnostics
}
