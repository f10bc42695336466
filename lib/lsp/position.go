// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"strings"
	"unicode/utf16"

	"github.com/skylens-build/skylens/lib/analysis"
)

// The protocol measures positions in UTF-16 code units on zero-based
// lines; the Starlark parser measures them in runes on one-based
// lines. Both conversions walk the runes of the affected line, so
// they are exact for any content, not just ASCII.

// lineText returns the zero-based line of text, without its
// terminator.
func lineText(text string, line int) string {
	for ; line > 0; line-- {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			return ""
		}
		text = text[i+1:]
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(text, "\r")
}

// utf16Len returns the UTF-16 code unit count of one rune.
func utf16Len(r rune) int {
	if n := len(utf16.Encode([]rune{r})); n > 0 {
		return n
	}
	return 1
}

// toFilePosition converts a protocol position into a parser position
// within text. Positions past the end of the line clamp to just after
// its last rune.
func toFilePosition(text string, pos position) analysis.Position {
	line := lineText(text, pos.Line)
	col := 1
	units := 0
	for _, r := range line {
		if units >= pos.Character {
			break
		}
		units += utf16Len(r)
		col++
	}
	return analysis.Position{Line: pos.Line + 1, Col: col}
}

// fromFilePosition converts a parser position within text into a
// protocol position.
func fromFilePosition(text string, pos analysis.Position) position {
	if pos.Line < 1 {
		return position{}
	}
	line := lineText(text, pos.Line-1)
	col := 1
	units := 0
	for _, r := range line {
		if col >= pos.Col {
			break
		}
		units += utf16Len(r)
		col++
	}
	return position{Line: pos.Line - 1, Character: units}
}

// byteOffset returns the byte index of a protocol position in text,
// clamped to the document. Used to apply ranged edits.
func byteOffset(text string, pos position) int {
	offset := 0
	for line := pos.Line; line > 0; line-- {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return len(text)
		}
		offset += i + 1
	}
	units := 0
	for i, r := range text[offset:] {
		if r == '\n' || units >= pos.Character {
			return offset + i
		}
		units += utf16Len(r)
	}
	return len(text)
}
