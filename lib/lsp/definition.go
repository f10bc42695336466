// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"context"
	"encoding/json"
	"io"

	"github.com/skylens-build/skylens/lib/analysis"
)

// handleDefinition navigates from load paths, target labels, and
// load-bound or locally defined identifiers. A null result means the
// cursor is not on anything navigable.
func (s *Server) handleDefinition(ctx context.Context, output io.Writer, req *request) error {
	var params textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(output, req.ID, codeInvalidParams, "invalid definition params: "+err.Error())
	}
	doc, ok := s.documents.get(params.TextDocument.URI)
	if !ok {
		return writeResult(output, req.ID, nil)
	}
	parsed, _ := analysis.Parse(doc.path, []byte(doc.text))
	filePos := toFilePosition(doc.text, params.Position)

	if literal, ok := parsed.StringAt(filePos); ok {
		return writeResult(output, req.ID, s.stringDefinition(ctx, doc, parsed, literal))
	}
	if name, ok := parsed.IdentAt(filePos); ok {
		return writeResult(output, req.ID, s.identifierDefinition(ctx, doc, parsed, name))
	}
	return writeResult(output, req.ID, nil)
}

// stringDefinition resolves a string literal: load modules go to the
// loaded file, other strings are treated as target labels and go to
// the target's file, at the defining rule when there is one.
func (s *Server) stringDefinition(ctx context.Context, doc document, parsed *analysis.Document, literal analysis.StringLiteral) any {
	if isLoadModule(parsed, literal) {
		path, err := s.resolver.ResolveLoad(ctx, literal.Value, doc.path)
		if err != nil {
			s.logger.Debug("load did not resolve", "label", literal.Value, "error", err)
			return nil
		}
		return s.fileLocation(path)
	}

	resolution, err := s.resolver.ResolveStringLiteral(ctx, literal.Value, doc.path)
	if err != nil {
		s.logger.Debug("label did not resolve", "label", literal.Value, "error", err)
		return nil
	}
	return s.ruleLocation(resolution.Path, resolution.Rule)
}

// identifierDefinition finds where an identifier was defined: through
// the load statement that bound it, or at its top-level definition in
// the same file.
func (s *Server) identifierDefinition(ctx context.Context, doc document, parsed *analysis.Document, name string) any {
	for _, load := range parsed.Loads() {
		for _, symbol := range load.Symbols {
			if symbol.To != name {
				continue
			}
			path, err := s.resolver.ResolveLoad(ctx, load.Module, doc.path)
			if err != nil {
				s.logger.Debug("load did not resolve", "label", load.Module, "error", err)
				return nil
			}
			return s.symbolLocation(path, symbol.From)
		}
	}
	if pos, ok := parsed.FindDefinition(name); ok {
		return location{
			URI:   doc.uri,
			Range: pointRange(fromFilePosition(doc.text, pos)),
		}
	}
	return nil
}

// fileLocation is a location at the start of a file.
func (s *Server) fileLocation(path string) location {
	return location{URI: pathToURI(path)}
}

// ruleLocation points into path at the call defining the named rule,
// or at the start of the file when rule is empty or not found.
func (s *Server) ruleLocation(path, rule string) location {
	loc := s.fileLocation(path)
	if rule == "" {
		return loc
	}
	text, ok := s.fileText(path)
	if !ok {
		return loc
	}
	parsed, _ := analysis.Parse(path, []byte(text))
	if pos, ok := parsed.FindRuleByName(rule); ok {
		loc.Range = pointRange(fromFilePosition(text, pos))
	}
	return loc
}

// symbolLocation points into path at the top-level definition of
// name, or at the start of the file when it is not found.
func (s *Server) symbolLocation(path, name string) location {
	loc := s.fileLocation(path)
	text, ok := s.fileText(path)
	if !ok {
		return loc
	}
	parsed, _ := analysis.Parse(path, []byte(text))
	if pos, ok := parsed.FindDefinition(name); ok {
		loc.Range = pointRange(fromFilePosition(text, pos))
	}
	return loc
}

func pointRange(pos position) textRange {
	return textRange{Start: pos, End: pos}
}
