// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package analysis_test

import (
	"reflect"
	"testing"

	"github.com/skylens-build/skylens/lib/analysis"
)

func TestLoads(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "pkg/BUILD.bazel", `load("//build:rules.bzl", "alpha", beta_alias = "beta")
load("@deps//:defs.bzl", "gamma")

alpha()
beta_alias()
gamma()
`)
	loads := doc.Loads()
	if len(loads) != 2 {
		t.Fatalf("Loads = %v, want 2 entries", loads)
	}

	first := loads[0]
	if first.Module != "//build:rules.bzl" {
		t.Errorf("first module = %q, want %q", first.Module, "//build:rules.bzl")
	}
	if first.ModuleStart.Line != 1 || first.ModuleStart.Col != 6 {
		t.Errorf("first module start = %d:%d, want 1:6", first.ModuleStart.Line, first.ModuleStart.Col)
	}
	if len(first.Symbols) != 2 {
		t.Fatalf("first symbols = %v, want 2 entries", first.Symbols)
	}
	wantSymbols := []analysis.LoadSymbol{
		{From: "alpha", To: "alpha", Pos: first.Symbols[0].Pos},
		{From: "beta", To: "beta_alias", Pos: first.Symbols[1].Pos},
	}
	if !reflect.DeepEqual(first.Symbols, wantSymbols) {
		t.Errorf("first symbols = %v, want %v", first.Symbols, wantSymbols)
	}

	if loads[1].Module != "@deps//:defs.bzl" {
		t.Errorf("second module = %q, want %q", loads[1].Module, "@deps//:defs.bzl")
	}
}

func TestFindRuleByName(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "BUILD", `cc_library(
    name = "util",
    srcs = ["util.cc"],
)

cc_binary(name = "tool", deps = [":util"])
`)

	pos, ok := doc.FindRuleByName("tool")
	if !ok {
		t.Fatal("FindRuleByName(tool) not found")
	}
	if pos.Line != 6 || pos.Col != 1 {
		t.Errorf("position = %d:%d, want 6:1", pos.Line, pos.Col)
	}

	pos, ok = doc.FindRuleByName("util")
	if !ok {
		t.Fatal("FindRuleByName(util) not found")
	}
	if pos.Line != 1 {
		t.Errorf("line = %d, want 1", pos.Line)
	}

	if _, ok := doc.FindRuleByName("missing"); ok {
		t.Error("FindRuleByName(missing) found a rule, want none")
	}
}

func TestRuleNames(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "BUILD", `cc_library(name = "util")

filegroup(name = "data", srcs = ["a.txt"])

exports_files(["LICENSE"])
`)
	got := doc.RuleNames()
	want := []string{"util", "data"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RuleNames = %v, want %v", got, want)
	}
}

func TestTopLevelBindings(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "tools/defs.bzl", `load("//tools:helpers.bzl", "helper")

VERSION = "1.2.3"

def release(name):
    helper(name = name)

MAJOR, MINOR = 1, 2
`)
	got := doc.TopLevelBindings()
	type entry struct {
		name string
		kind analysis.BindingKind
		line int
	}
	want := []entry{
		{"helper", analysis.BindingLoaded, 1},
		{"VERSION", analysis.BindingVariable, 3},
		{"release", analysis.BindingFunction, 5},
		{"MAJOR", analysis.BindingVariable, 8},
		{"MINOR", analysis.BindingVariable, 8},
	}
	if len(got) != len(want) {
		t.Fatalf("TopLevelBindings = %v, want %d entries", got, len(want))
	}
	for i, binding := range got {
		if binding.Name != want[i].name || binding.Kind != want[i].kind || binding.Pos.Line != want[i].line {
			t.Errorf("binding[%d] = %+v, want %+v", i, binding, want[i])
		}
	}
}

func TestFindDefinition(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "tools/defs.bzl", `VERSION = "1.2.3"

def release(name):
    pass
`)
	pos, ok := doc.FindDefinition("release")
	if !ok {
		t.Fatal("FindDefinition(release) not found")
	}
	if pos.Line != 3 || pos.Col != 5 {
		t.Errorf("position = %d:%d, want 3:5", pos.Line, pos.Col)
	}
	if _, ok := doc.FindDefinition("missing"); ok {
		t.Error("FindDefinition(missing) found a binding, want none")
	}
}

func TestStringAt(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "BUILD", `cc_library(
    name = "util",
    srcs = ["util.cc"],
)
`)
	literal, ok := doc.StringAt(analysis.Position{Line: 2, Col: 14})
	if !ok {
		t.Fatal("StringAt inside the name string found nothing")
	}
	if literal.Value != "util" {
		t.Errorf("value = %q, want %q", literal.Value, "util")
	}
	if literal.Start.Line != 2 || literal.Start.Col != 12 {
		t.Errorf("start = %d:%d, want 2:12", literal.Start.Line, literal.Start.Col)
	}
	if literal.End.Col <= literal.Start.Col {
		t.Errorf("end col = %d, want past start col %d", literal.End.Col, literal.Start.Col)
	}

	if _, ok := doc.StringAt(analysis.Position{Line: 1, Col: 3}); ok {
		t.Error("StringAt on an identifier found a string, want none")
	}
}

func TestIdentAt(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "BUILD", `cc_library(
    name = "util",
    srcs = ["util.cc"],
)
`)
	name, ok := doc.IdentAt(analysis.Position{Line: 1, Col: 3})
	if !ok {
		t.Fatal("IdentAt on cc_library found nothing")
	}
	if name != "cc_library" {
		t.Errorf("name = %q, want %q", name, "cc_library")
	}

	if _, ok := doc.IdentAt(analysis.Position{Line: 3, Col: 15}); ok {
		t.Error("IdentAt inside a string literal found an identifier, want none")
	}
}
