// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"encoding/json"
	"strings"
	"testing"
)

func completionItems(t *testing.T, f *serverFixture, uri, text string, line, character int) []completionItem {
	t.Helper()
	messages := f.session(t, didOpen(uri, text), requestMessage(2, "textDocument/completion", positionParams(uri, line, character)))
	var items []completionItem
	if err := json.Unmarshal(responseByID(t, messages, "2").Result, &items); err != nil {
		t.Fatal(err)
	}
	return items
}

func findItem(items []completionItem, label string) (completionItem, bool) {
	for _, item := range items {
		if item.Label == label {
			return item, true
		}
	}
	return completionItem{}, false
}

func TestCompletionLoadPath(t *testing.T) {
	t.Parallel()
	f := newServerFixture(t)

	uri := f.uri("tools.bzl")
	text := "load(\"//foo:\", \"helper\")\n"
	character := strings.Index(text, "//foo:") + len("//foo:")
	items := completionItems(t, f, uri, text, 0, character)

	if len(items) != 1 {
		t.Fatalf("got %d items, want only the loadable file: %+v", len(items), items)
	}
	item := items[0]
	if item.Label != "defs.bzl" || item.Kind != completionKindFile {
		t.Errorf("item = %+v, want defs.bzl with file kind", item)
	}
	if item.InsertText != "defs.bzl" {
		t.Errorf("insert text = %q, want defs.bzl", item.InsertText)
	}
	if item.TextEdit == nil {
		t.Fatal("item has no text edit")
	}
	if item.TextEdit.NewText != "defs.bzl" {
		t.Errorf("edit text = %q, want defs.bzl", item.TextEdit.NewText)
	}
	want := textRange{Start: position{Line: 0, Character: character}, End: position{Line: 0, Character: character}}
	if item.TextEdit.Range != want {
		t.Errorf("edit range = %+v, want %+v", item.TextEdit.Range, want)
	}
}

func TestCompletionTargets(t *testing.T) {
	t.Parallel()
	f := newServerFixture(t)
	f.runner.QueryResults = map[string][]string{"//foo:*": {"//foo:main"}}

	uri := f.uri("BUILD")
	text := "cc_library(name = \"x\", deps = [\"//foo:\"])\n"
	character := strings.Index(text, "//foo:") + len("//foo:")
	items := completionItems(t, f, uri, text, 0, character)

	target, ok := findItem(items, "main")
	if !ok {
		t.Fatalf("no target completion among %+v", items)
	}
	if target.Kind != completionKindReference {
		t.Errorf("target kind = %d, want %d", target.Kind, completionKindReference)
	}
	file, ok := findItem(items, "main.cc")
	if !ok {
		t.Fatalf("no file completion among %+v", items)
	}
	if file.Kind != completionKindFile {
		t.Errorf("file kind = %d, want %d", file.Kind, completionKindFile)
	}
}

func TestCompletionEscapedLiteralOmitsEdit(t *testing.T) {
	t.Parallel()
	f := newServerFixture(t)

	// The escape means source columns no longer line up with value
	// offsets, so the item must carry insert text only.
	uri := f.uri("tools.bzl")
	text := "load(\"\\x2f/foo:\", \"helper\")\n"
	character := strings.Index(text, "\", ")
	items := completionItems(t, f, uri, text, 0, character)

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(items), items)
	}
	item := items[0]
	if item.Label != "defs.bzl" || item.InsertText != "defs.bzl" {
		t.Errorf("item = %+v, want defs.bzl", item)
	}
	if item.TextEdit != nil {
		t.Errorf("escaped literal produced a text edit: %+v", item.TextEdit)
	}
}

func TestCompletionSymbols(t *testing.T) {
	t.Parallel()
	f := newServerFixture(t)

	uri := f.uri("lib.bzl")
	items := completionItems(t, f, uri, "def local_helper():\n    pass\n", 1, 8)

	local, ok := findItem(items, "local_helper")
	if !ok {
		t.Fatalf("no completion for the file's own function among %d items", len(items))
	}
	if local.Kind != completionKindFunction || local.Detail != "function" {
		t.Errorf("local item = %+v, want function", local)
	}

	builtin, ok := findItem(items, "cc_library")
	if !ok {
		t.Fatalf("no completion for builtin rule among %d items", len(items))
	}
	if builtin.Kind != completionKindFunction || builtin.Detail != "rule" {
		t.Errorf("builtin item = %+v, want callable rule", builtin)
	}
	if builtin.Documentation == nil || !strings.Contains(builtin.Documentation.Value, "cc_library") {
		t.Errorf("builtin documentation = %+v", builtin.Documentation)
	}
}

func TestCompletionUnopenedDocument(t *testing.T) {
	t.Parallel()
	f := newServerFixture(t)

	messages := f.session(t, requestMessage(2, "textDocument/completion", positionParams(f.uri("BUILD"), 0, 0)))
	if got := string(responseByID(t, messages, "2").Result); got != "[]" {
		t.Errorf("result = %s, want []", got)
	}
}
