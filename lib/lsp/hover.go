// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/skylens-build/skylens/lib/analysis"
)

// handleHover documents the identifier under the cursor: load-bound
// symbols show their origin, build-language names show their rendered
// documentation. A null result means there is nothing to show.
func (s *Server) handleHover(ctx context.Context, output io.Writer, req *request) error {
	var params textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(output, req.ID, codeInvalidParams, "invalid hover params: "+err.Error())
	}
	doc, ok := s.documents.get(params.TextDocument.URI)
	if !ok {
		return writeResult(output, req.ID, nil)
	}
	parsed, _ := analysis.Parse(doc.path, []byte(doc.text))
	filePos := toFilePosition(doc.text, params.Position)

	name, ok := parsed.IdentAt(filePos)
	if !ok {
		return writeResult(output, req.ID, nil)
	}

	if markdown, ok := loadedSymbolDoc(parsed, name); ok {
		return writeResult(output, req.ID, hover{Contents: markupContent{Kind: "markdown", Value: markdown}})
	}

	catalog := s.resolver.Catalog(ctx, doc.path)
	symbol, ok := catalog.Lookup(name, parsed.Type)
	if !ok {
		return writeResult(output, req.ID, nil)
	}
	return writeResult(output, req.ID, hover{Contents: markupContent{Kind: "markdown", Value: symbol.Markdown()}})
}

// loadedSymbolDoc describes a load-bound name. Load bindings shadow
// build-language names, so this is checked before the catalog.
func loadedSymbolDoc(parsed *analysis.Document, name string) (string, bool) {
	for _, load := range parsed.Loads() {
		for _, symbol := range load.Symbols {
			if symbol.To != name {
				continue
			}
			if symbol.From != symbol.To {
				return fmt.Sprintf("**%s** (loaded)\n\nLoaded from `%s`, original name `%s`.", name, load.Module, symbol.From), true
			}
			return fmt.Sprintf("**%s** (loaded)\n\nLoaded from `%s`.", name, load.Module), true
		}
	}
	return "", false
}
