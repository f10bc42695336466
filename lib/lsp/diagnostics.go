// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"context"
	"io"

	"github.com/skylens-build/skylens/lib/analysis"
)

// publishDiagnostics parses and lints one document and pushes the
// findings. An empty finding list is still pushed so the client
// clears stale squiggles.
func (s *Server) publishDiagnostics(ctx context.Context, output io.Writer, doc document) error {
	parsed, findings := analysis.Parse(doc.path, []byte(doc.text))
	if parsed.File != nil {
		catalog := s.resolver.Catalog(ctx, doc.path)
		findings = append(findings, parsed.Lint(catalog.Globals(parsed.Type))...)
	}

	params := publishDiagnosticsParams{
		URI:         doc.uri,
		Version:     doc.version,
		Diagnostics: make([]diagnostic, 0, len(findings)),
	}
	for _, finding := range findings {
		params.Diagnostics = append(params.Diagnostics, diagnostic{
			Range: textRange{
				Start: fromFilePosition(doc.text, finding.Start),
				End:   fromFilePosition(doc.text, finding.End),
			},
			Severity: diagnosticSeverity(finding.Severity),
			Code:     finding.Code,
			Source:   "skylens",
			Message:  finding.Message,
		})
	}
	return writeNotification(output, "textDocument/publishDiagnostics", params)
}

func diagnosticSeverity(severity analysis.Severity) int {
	if severity == analysis.SeverityError {
		return severityError
	}
	return severityWarning
}
