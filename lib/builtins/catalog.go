// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/skylens-build/skylens/lib/analysis"
)

// SymbolKind says where a catalog entry comes from.
type SymbolKind int

const (
	// SymbolRule is a rule class from the build-language dump.
	SymbolRule SymbolKind = iota
	// SymbolGlobal is an injected global from the snapshot.
	SymbolGlobal
)

func (k SymbolKind) String() string {
	if k == SymbolRule {
		return "rule"
	}
	return "global"
}

// Symbol is one name the build language defines, with enough detail
// to render documentation. Doc is an HTML fragment; use Markdown for
// display.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Callable   bool
	Doc        string
	Page       string
	Attributes []Attribute
	Params     []Param
}

// Catalog is the set of build-language names for a bazel version:
// rules from the build-language dump plus the injected globals.
type Catalog struct {
	rules   []Rule
	globals []Global
	rule    map[string]int
	global  map[string]int
}

// New builds a catalog from build-language rules, typically decoded
// from a live `bazel info build-language` dump.
func New(rules []Rule) (*Catalog, error) {
	globals, err := embeddedGlobals()
	if err != nil {
		return nil, err
	}
	catalog := &Catalog{
		rules:   slices.Clone(rules),
		globals: globals,
		rule:    make(map[string]int, len(rules)),
		global:  make(map[string]int, len(globals)),
	}
	sort.Slice(catalog.rules, func(i, j int) bool { return catalog.rules[i].Name < catalog.rules[j].Name })
	for i, rule := range catalog.rules {
		catalog.rule[rule.Name] = i
	}
	for i, global := range catalog.globals {
		catalog.global[global.Name] = i
	}
	return catalog, nil
}

// Default builds a catalog from the embedded rules snapshot, for use
// when no bazel binary is reachable.
func Default() (*Catalog, error) {
	rules, err := embeddedRules()
	if err != nil {
		return nil, err
	}
	return New(rules)
}

// Rules returns the catalog's rule definitions, sorted by name.
func (c *Catalog) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Globals returns a membership test for the names fileType sees, in
// the shape the linter consumes.
func (c *Catalog) Globals(fileType analysis.FileType) func(name string) bool {
	return func(name string) bool {
		_, ok := c.Lookup(name, fileType)
		return ok
	}
}

// Lookup finds name as seen from fileType.
func (c *Catalog) Lookup(name string, fileType analysis.FileType) (Symbol, bool) {
	if i, ok := c.rule[name]; ok && rulesVisible(fileType) {
		return ruleSymbol(c.rules[i]), true
	}
	if i, ok := c.global[name]; ok {
		global := c.globals[i]
		if contextMatches(global, fileType) {
			return Symbol{
				Name:     global.Name,
				Kind:     SymbolGlobal,
				Callable: global.Callable,
				Doc:      global.Doc,
				Page:     global.Page,
				Params:   global.Params,
			}, true
		}
	}
	return Symbol{}, false
}

// Symbols returns every name fileType sees, sorted, for completion.
func (c *Catalog) Symbols(fileType analysis.FileType) []Symbol {
	var symbols []Symbol
	if rulesVisible(fileType) {
		for _, rule := range c.rules {
			symbols = append(symbols, ruleSymbol(rule))
		}
	}
	for _, global := range c.globals {
		if !contextMatches(global, fileType) {
			continue
		}
		symbols = append(symbols, Symbol{
			Name:     global.Name,
			Kind:     SymbolGlobal,
			Callable: global.Callable,
			Doc:      global.Doc,
			Page:     global.Page,
			Params:   global.Params,
		})
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Name < symbols[j].Name })
	return symbols
}

func ruleSymbol(rule Rule) Symbol {
	return Symbol{
		Name:       rule.Name,
		Kind:       SymbolRule,
		Callable:   true,
		Doc:        rule.Doc,
		Page:       rulePage(rule.Label),
		Attributes: rule.Attributes,
	}
}

// rulePage turns the dump's documentation label into a bazel.build
// site path, or "" when it is unset or not a recognizable location.
func rulePage(label string) string {
	if path, ok := strings.CutPrefix(label, "https://bazel.build/"); ok {
		return path
	}
	if strings.HasPrefix(label, "/") {
		return label
	}
	return ""
}

// rulesVisible reports whether fileType can reference rule classes.
// MODULE.bazel and REPO.bazel only see the module directives.
func rulesVisible(fileType analysis.FileType) bool {
	return fileType != analysis.FileTypeModule
}

func contextMatches(global Global, fileType analysis.FileType) bool {
	if len(global.Contexts) == 0 {
		return true
	}
	name := fileType.String()
	if fileType == analysis.FileTypeUnknown {
		// Unrecognized files parse as .bzl, so they see the .bzl
		// globals too.
		name = analysis.FileTypeBzl.String()
	}
	return slices.Contains(global.Contexts, name)
}

// Markdown renders the symbol's documentation for hover: name, kind,
// converted doc, and the attribute or parameter list.
func (s Symbol) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n", s.Name, s.Kind)
	if doc := MarkdownDoc(s.Doc, s.Page); doc != "" {
		b.WriteString("\n" + doc + "\n")
	}
	if len(s.Attributes) > 0 {
		b.WriteString("\nAttributes:\n")
		for _, attribute := range s.Attributes {
			b.WriteString("- `" + attribute.Name + "` (" + attribute.Type)
			if attribute.Mandatory {
				b.WriteString(", mandatory")
			}
			b.WriteString(")")
			if doc := firstLine(MarkdownDoc(attribute.Doc, s.Page)); doc != "" {
				b.WriteString(": " + doc)
			}
			b.WriteString("\n")
		}
	}
	if len(s.Params) > 0 {
		b.WriteString("\nParameters:\n")
		for _, param := range s.Params {
			b.WriteString("- `" + param.Name + "`")
			if param.Default != "" {
				b.WriteString(" (default `" + param.Default + "`)")
			}
			if doc := firstLine(MarkdownDoc(param.Doc, s.Page)); doc != "" {
				b.WriteString(": " + doc)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
