// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"go.starlark.net/syntax"
)

// Load is one load statement: the module label as written and the
// symbols it binds.
type Load struct {
	Module      string
	ModuleStart Position
	ModuleEnd   Position
	Symbols     []LoadSymbol
}

// LoadSymbol is one binding introduced by a load. From is the name in
// the loaded module, To the local name; they differ only for
// aliased symbols.
type LoadSymbol struct {
	From string
	To   string
	Pos  Position
}

// Loads returns the file's load statements in source order.
func (d *Document) Loads() []Load {
	if d.File == nil {
		return nil
	}
	var loads []Load
	for _, stmt := range d.File.Stmts {
		load, ok := stmt.(*syntax.LoadStmt)
		if !ok {
			continue
		}
		module, _ := load.Module.Value.(string)
		start, end := load.Module.Span()
		entry := Load{
			Module:      module,
			ModuleStart: position(start),
			ModuleEnd:   position(end),
		}
		for i, to := range load.To {
			entry.Symbols = append(entry.Symbols, LoadSymbol{
				From: load.From[i].Name,
				To:   to.Name,
				Pos:  position(to.NamePos),
			})
		}
		loads = append(loads, entry)
	}
	return loads
}

// FindRuleByName returns the position of the call whose name argument
// equals name, covering both top-level rules and calls nested inside
// macros.
func (d *Document) FindRuleByName(name string) (Position, bool) {
	if d.File == nil {
		return Position{}, false
	}
	var found Position
	ok := false
	for _, stmt := range d.File.Stmts {
		syntax.Walk(stmt, func(n syntax.Node) bool {
			if ok {
				return false
			}
			call, isCall := n.(*syntax.CallExpr)
			if !isCall {
				return true
			}
			if ruleName(call) == name {
				start, _ := call.Span()
				found = position(start)
				ok = true
				return false
			}
			return true
		})
		if ok {
			break
		}
	}
	return found, ok
}

// ruleName extracts the string value of a call's name argument, or ""
// when there is none.
func ruleName(call *syntax.CallExpr) string {
	for _, arg := range call.Args {
		binary, ok := arg.(*syntax.BinaryExpr)
		if !ok || binary.Op != syntax.EQ {
			continue
		}
		ident, ok := binary.X.(*syntax.Ident)
		if !ok || ident.Name != "name" {
			continue
		}
		literal, ok := binary.Y.(*syntax.Literal)
		if !ok || literal.Token != syntax.STRING {
			continue
		}
		value, _ := literal.Value.(string)
		return value
	}
	return ""
}

// RuleNames returns the name argument of every call in the file, in
// source order.
func (d *Document) RuleNames() []string {
	if d.File == nil {
		return nil
	}
	var names []string
	for _, stmt := range d.File.Stmts {
		syntax.Walk(stmt, func(n syntax.Node) bool {
			if call, ok := n.(*syntax.CallExpr); ok {
				if name := ruleName(call); name != "" {
					names = append(names, name)
				}
			}
			return true
		})
	}
	return names
}

// BindingKind classifies how a top-level name was introduced.
type BindingKind int

const (
	BindingFunction BindingKind = iota
	BindingVariable
	BindingLoaded
)

func (k BindingKind) String() string {
	switch k {
	case BindingFunction:
		return "function"
	case BindingVariable:
		return "variable"
	case BindingLoaded:
		return "loaded"
	}
	return "unknown"
}

// Binding is a name the file defines at top level.
type Binding struct {
	Name string
	Kind BindingKind
	Pos  Position
}

// TopLevelBindings returns the names the file defines at top level,
// in source order.
func (d *Document) TopLevelBindings() []Binding {
	if d.File == nil {
		return nil
	}
	var bindings []Binding
	for _, stmt := range d.File.Stmts {
		switch s := stmt.(type) {
		case *syntax.DefStmt:
			bindings = append(bindings, Binding{
				Name: s.Name.Name,
				Kind: BindingFunction,
				Pos:  position(s.Name.NamePos),
			})
		case *syntax.AssignStmt:
			if s.Op != syntax.EQ {
				continue
			}
			for _, ident := range assignedIdents(s.LHS) {
				bindings = append(bindings, Binding{
					Name: ident.Name,
					Kind: BindingVariable,
					Pos:  position(ident.NamePos),
				})
			}
		case *syntax.LoadStmt:
			for _, to := range s.To {
				bindings = append(bindings, Binding{
					Name: to.Name,
					Kind: BindingLoaded,
					Pos:  position(to.NamePos),
				})
			}
		}
	}
	return bindings
}

// FindDefinition returns where the file defines name at top level.
func (d *Document) FindDefinition(name string) (Position, bool) {
	for _, binding := range d.TopLevelBindings() {
		if binding.Name == name {
			return binding.Pos, true
		}
	}
	return Position{}, false
}

func assignedIdents(expr syntax.Expr) []*syntax.Ident {
	switch e := expr.(type) {
	case *syntax.Ident:
		return []*syntax.Ident{e}
	case *syntax.ParenExpr:
		return assignedIdents(e.X)
	case *syntax.TupleExpr:
		var idents []*syntax.Ident
		for _, element := range e.List {
			idents = append(idents, assignedIdents(element)...)
		}
		return idents
	case *syntax.ListExpr:
		var idents []*syntax.Ident
		for _, element := range e.List {
			idents = append(idents, assignedIdents(element)...)
		}
		return idents
	}
	return nil
}

// StringLiteral is a string constant and the source range of its
// token, quotes included.
type StringLiteral struct {
	Value string
	Start Position
	End   Position
}

// StringAt returns the innermost string literal covering pos.
func (d *Document) StringAt(pos Position) (StringLiteral, bool) {
	if d.File == nil {
		return StringLiteral{}, false
	}
	var found StringLiteral
	ok := false
	for _, stmt := range d.File.Stmts {
		syntax.Walk(stmt, func(n syntax.Node) bool {
			literal, isLiteral := n.(*syntax.Literal)
			if !isLiteral || literal.Token != syntax.STRING {
				return true
			}
			start, end := literal.Span()
			if !spanContains(start, end, pos) {
				return true
			}
			value, _ := literal.Value.(string)
			found = StringLiteral{Value: value, Start: position(start), End: position(end)}
			ok = true
			return false
		})
	}
	return found, ok
}

// IdentAt returns the identifier covering pos.
func (d *Document) IdentAt(pos Position) (string, bool) {
	if d.File == nil {
		return "", false
	}
	name := ""
	ok := false
	for _, stmt := range d.File.Stmts {
		syntax.Walk(stmt, func(n syntax.Node) bool {
			ident, isIdent := n.(*syntax.Ident)
			if !isIdent {
				return true
			}
			start, end := ident.Span()
			if !spanContains(start, end, pos) {
				return true
			}
			name = ident.Name
			ok = true
			return false
		})
	}
	return name, ok
}

// spanContains reports whether pos falls inside [start, end], both
// ends inclusive so a cursor at either edge of a token still matches.
func spanContains(start, end syntax.Position, pos Position) bool {
	if pos.Line < int(start.Line) || pos.Line > int(end.Line) {
		return false
	}
	if pos.Line == int(start.Line) && pos.Col < int(start.Col) {
		return false
	}
	if pos.Line == int(end.Line) && pos.Col > int(end.Col) {
		return false
	}
	return true
}
