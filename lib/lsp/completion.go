// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"context"
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/skylens-build/skylens/lib/analysis"
	"github.com/skylens-build/skylens/lib/resolve"
)

// handleCompletion answers with label completions when the cursor is
// inside a string literal and with build-language symbols otherwise.
func (s *Server) handleCompletion(ctx context.Context, output io.Writer, req *request) error {
	var params textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(output, req.ID, codeInvalidParams, "invalid completion params: "+err.Error())
	}
	doc, ok := s.documents.get(params.TextDocument.URI)
	if !ok {
		return writeResult(output, req.ID, []completionItem{})
	}
	parsed, _ := analysis.Parse(doc.path, []byte(doc.text))
	filePos := toFilePosition(doc.text, params.Position)

	if literal, ok := parsed.StringAt(filePos); ok {
		return writeResult(output, req.ID, s.labelCompletionItems(ctx, doc, parsed, literal, params.Position, filePos))
	}
	return writeResult(output, req.ID, s.symbolCompletionItems(ctx, doc, parsed))
}

func (s *Server) labelCompletionItems(ctx context.Context, doc document, parsed *analysis.Document, literal analysis.StringLiteral, cursor position, filePos analysis.Position) []completionItem {
	kind := resolve.StringAny
	if isLoadModule(parsed, literal) {
		kind = resolve.StringLoadPath
	}
	prefix, clean := literalPrefix(literal, filePos)
	completions, err := s.resolver.Completions(ctx, doc.path, kind, prefix)
	if err != nil {
		s.logger.Debug("label completion failed", "value", prefix, "error", err)
		return []completionItem{}
	}

	items := make([]completionItem, 0, len(completions))
	for _, completion := range completions {
		item := completionItem{
			Label:      completion.Value,
			Kind:       completionItemKind(completion.Kind),
			InsertText: completion.Insert,
		}
		if clean {
			item.TextEdit = &textEdit{
				Range: textRange{
					Start: editStart(doc.text, literal, completion.Offset),
					End:   cursor,
				},
				NewText: completion.Insert,
			}
		}
		items = append(items, item)
	}
	return items
}

func (s *Server) symbolCompletionItems(ctx context.Context, doc document, parsed *analysis.Document) []completionItem {
	items := []completionItem{}
	seen := make(map[string]bool)
	for _, binding := range parsed.TopLevelBindings() {
		if seen[binding.Name] {
			continue
		}
		seen[binding.Name] = true
		kind := completionKindVariable
		if binding.Kind != analysis.BindingVariable {
			kind = completionKindFunction
		}
		items = append(items, completionItem{
			Label:  binding.Name,
			Kind:   kind,
			Detail: binding.Kind.String(),
		})
	}
	catalog := s.resolver.Catalog(ctx, doc.path)
	for _, symbol := range catalog.Symbols(parsed.Type) {
		if seen[symbol.Name] {
			continue
		}
		seen[symbol.Name] = true
		kind := completionKindVariable
		if symbol.Callable {
			kind = completionKindFunction
		}
		items = append(items, completionItem{
			Label:         symbol.Name,
			Kind:          kind,
			Detail:        symbol.Kind.String(),
			Documentation: &markupContent{Kind: "markdown", Value: symbol.Markdown()},
		})
	}
	return items
}

// isLoadModule reports whether the literal is the module argument of
// a load statement, which restricts completion to loadable files.
func isLoadModule(parsed *analysis.Document, literal analysis.StringLiteral) bool {
	for _, load := range parsed.Loads() {
		if load.ModuleStart == literal.Start {
			return true
		}
	}
	return false
}

// literalPrefix returns the part of the literal's value the user has
// typed before the cursor. The boolean result reports whether value
// indexes map one-to-one onto source columns; escapes, raw strings,
// and multi-line strings break that mapping, in which case the whole
// value is returned and completions carry no text edit.
func literalPrefix(literal analysis.StringLiteral, cursor analysis.Position) (string, bool) {
	length := utf8.RuneCountInString(literal.Value)
	clean := literal.Start.Line == literal.End.Line && literal.End.Col-literal.Start.Col == length+2
	if !clean {
		return literal.Value, false
	}
	caret := cursor.Col - literal.Start.Col - 1
	if caret < 0 {
		caret = 0
	}
	if caret > length {
		caret = length
	}
	return literal.Value[:runeByteIndex(literal.Value, caret)], true
}

// editStart converts a byte offset into the literal's value into the
// protocol position where a completion's replacement begins.
func editStart(text string, literal analysis.StringLiteral, offset int) position {
	if offset > len(literal.Value) {
		offset = len(literal.Value)
	}
	runes := utf8.RuneCountInString(literal.Value[:offset])
	return fromFilePosition(text, analysis.Position{
		Line: literal.Start.Line,
		Col:  literal.Start.Col + 1 + runes,
	})
}

// runeByteIndex returns the byte index of the rune at the given rune
// index, or len(s) when the index is past the end.
func runeByteIndex(s string, runes int) int {
	count := 0
	for i := range s {
		if count == runes {
			return i
		}
		count++
	}
	return len(s)
}

func completionItemKind(kind resolve.CompletionKind) int {
	switch kind {
	case resolve.CompletionRepository:
		return completionKindModule
	case resolve.CompletionDirectory:
		return completionKindFolder
	case resolve.CompletionFile:
		return completionKindFile
	case resolve.CompletionTarget:
		return completionKindReference
	}
	return 0
}
