// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"bytes"
	"encoding/json"
	"fmt"

	_ "embed"
)

// Global is a name bazel injects into Starlark files without it
// appearing in the build-language dump. Contexts lists the file types
// that see the name (values from analysis.FileType.String); empty
// means every file type.
type Global struct {
	Name     string   `json:"name"`
	Callable bool     `json:"callable,omitempty"`
	Contexts []string `json:"contexts,omitempty"`
	Page     string   `json:"page,omitempty"`
	Doc      string   `json:"doc,omitempty"`
	Params   []Param  `json:"params,omitempty"`
}

// Param is one parameter of a callable global.
type Param struct {
	Name    string `json:"name"`
	Default string `json:"default,omitempty"`
	Doc     string `json:"doc,omitempty"`
}

// globalsJSON is the curated globals snapshot, assembled from the
// bazel.build globals pages for the build, bzl, workspace, and module
// dialects. Doc strings are HTML fragments like the build-language
// dump's, so everything renders through the same converter.
//
//go:embed globals.json
var globalsJSON []byte

// rulesJSON is a fallback build-language snapshot for running without
// a bazel binary. Regenerate against a live workspace with
// `skylens builtins snapshot`.
//
//go:embed rules.json
var rulesJSON []byte

func embeddedGlobals() ([]Global, error) {
	var globals []Global
	if err := json.Unmarshal(globalsJSON, &globals); err != nil {
		return nil, fmt.Errorf("embedded globals snapshot: %w", err)
	}
	return globals, nil
}

func embeddedRules() ([]Rule, error) {
	rules, err := DecodeRules(rulesJSON)
	if err != nil {
		return nil, fmt.Errorf("embedded rules snapshot: %w", err)
	}
	return rules, nil
}

// EncodeRules renders rules as the indented JSON snapshot format.
func EncodeRules(rules []Rule) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(rules); err != nil {
		return nil, fmt.Errorf("encode rules snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeRules parses a JSON rules snapshot.
func DecodeRules(data []byte) ([]Rule, error) {
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
