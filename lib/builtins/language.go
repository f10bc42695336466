// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Rule is a rule class from bazel's build-language dump.
type Rule struct {
	Name       string      `json:"name"`
	Doc        string      `json:"doc,omitempty"`
	Label      string      `json:"label,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Attribute is one documented attribute of a rule.
type Attribute struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Mandatory bool   `json:"mandatory,omitempty"`
	Doc       string `json:"doc,omitempty"`
}

// Field numbers of the blaze_query.BuildLanguage message and its
// submessages. Unknown fields are skipped, so newer bazel versions
// adding fields stay decodable.
const (
	languageRuleField = 1

	ruleNameField      = 1
	ruleAttributeField = 2
	ruleDocField       = 3
	ruleLabelField     = 4

	attributeNameField      = 1
	attributeTypeField      = 2
	attributeMandatoryField = 3
	attributeDocField       = 4
)

// DecodeBuildLanguage parses the wire bytes of `bazel info
// build-language` into rule definitions, sorted by name.
func DecodeBuildLanguage(data []byte) ([]Rule, error) {
	var rules []Rule
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("decode build language: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num == languageRuleField && typ == protowire.BytesType {
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("decode build language: %w", protowire.ParseError(n))
			}
			data = data[n:]
			rule, err := decodeRule(value)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("decode build language: %w", protowire.ParseError(n))
		}
		data = data[n:]
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name < rules[j].Name })
	return rules, nil
}

func decodeRule(data []byte) (Rule, error) {
	var rule Rule
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Rule{}, fmt.Errorf("decode rule: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if typ == protowire.BytesType {
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return Rule{}, fmt.Errorf("decode rule: %w", protowire.ParseError(n))
			}
			data = data[n:]
			switch num {
			case ruleNameField:
				rule.Name = string(value)
			case ruleDocField:
				rule.Doc = string(value)
			case ruleLabelField:
				rule.Label = string(value)
			case ruleAttributeField:
				attribute, err := decodeAttribute(value)
				if err != nil {
					return Rule{}, err
				}
				rule.Attributes = append(rule.Attributes, attribute)
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return Rule{}, fmt.Errorf("decode rule: %w", protowire.ParseError(n))
		}
		data = data[n:]
	}
	if rule.Name == "" {
		return Rule{}, fmt.Errorf("decode rule: definition without a name")
	}
	return rule, nil
}

func decodeAttribute(data []byte) (Attribute, error) {
	var attribute Attribute
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Attribute{}, fmt.Errorf("decode attribute: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case typ == protowire.BytesType && num == attributeNameField:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return Attribute{}, fmt.Errorf("decode attribute: %w", protowire.ParseError(n))
			}
			attribute.Name = string(value)
			data = data[n:]
		case typ == protowire.BytesType && num == attributeDocField:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return Attribute{}, fmt.Errorf("decode attribute: %w", protowire.ParseError(n))
			}
			attribute.Doc = string(value)
			data = data[n:]
		case typ == protowire.VarintType && num == attributeTypeField:
			value, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Attribute{}, fmt.Errorf("decode attribute: %w", protowire.ParseError(n))
			}
			attribute.Type = attributeTypeName(value)
			data = data[n:]
		case typ == protowire.VarintType && num == attributeMandatoryField:
			value, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Attribute{}, fmt.Errorf("decode attribute: %w", protowire.ParseError(n))
			}
			attribute.Mandatory = value != 0
			data = data[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Attribute{}, fmt.Errorf("decode attribute: %w", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return attribute, nil
}

// attributeTypes maps the Attribute.Discriminator enum to the names
// the Bazel documentation uses.
var attributeTypes = map[uint64]string{
	1:  "integer",
	2:  "string",
	3:  "label",
	4:  "output",
	5:  "string_list",
	6:  "label_list",
	7:  "output_list",
	8:  "distribution_set",
	9:  "license",
	10: "string_dict",
	11: "fileset_entry_list",
	12: "label_list_dict",
	13: "string_list_dict",
	14: "boolean",
	15: "tristate",
	16: "integer_list",
	17: "string_dict_unary",
	18: "unknown",
	19: "label_dict_unary",
	20: "selector_list",
	21: "label_keyed_string_dict",
}

func attributeTypeName(value uint64) string {
	if name, ok := attributeTypes[value]; ok {
		return name
	}
	return fmt.Sprintf("type_%d", value)
}
