// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package label

import (
	"fmt"
	"strings"
)

// Label is a parsed Bazel label. The zero value is invalid; use Parse
// or MustParse to construct one.
//
// The four source forms and how they map onto the fields:
//
//	@repo//pkg:name   repo="repo", absolute, pkg="pkg", name="name"
//	//pkg:name        no repo, absolute, pkg="pkg", name="name"
//	:name             relative, name="name"
//	sub/file.bzl      relative, name="sub/file.bzl"
//
// Shorthand forms are expanded during parsing: "//pkg" names the
// target "pkg" (last package segment), and "@repo" alone names
// "@repo//:repo". A leading "@@" marks the repository name as
// canonical rather than apparent.
type Label struct {
	repo      string
	canonical bool
	hasRepo   bool
	pkg       string
	absolute  bool
	name      string
	str       string // pre-computed shortest spelling
}

// Parse parses a label in any of the forms accepted in load statements
// and rule attributes. Relative labels with an interior colon
// ("sub:target") are rejected: a target in another package must be
// written with a leading "//".
func Parse(s string) (Label, error) {
	if s == "" {
		return Label{}, fmt.Errorf("invalid label: empty string")
	}

	l := Label{}
	rest := s

	if strings.HasPrefix(rest, "@") {
		l.hasRepo = true
		rest = rest[1:]
		if strings.HasPrefix(rest, "@") {
			l.canonical = true
			rest = rest[1:]
		}
		repo, tail, found := strings.Cut(rest, "//")
		if err := validateRepo(repo); err != nil {
			return Label{}, fmt.Errorf("invalid label %q: %w", s, err)
		}
		l.repo = repo
		if !found {
			// "@repo" is shorthand for "@repo//:repo".
			if repo == "" {
				return Label{}, fmt.Errorf("invalid label %q: empty repository name", s)
			}
			l.absolute = true
			l.name = repo
			l.str = render(l)
			return l, nil
		}
		l.absolute = true
		rest = tail
	} else if strings.HasPrefix(rest, "//") {
		l.absolute = true
		rest = rest[2:]
	}

	if l.absolute {
		pkg, name, found := strings.Cut(rest, ":")
		if err := validatePackage(pkg); err != nil {
			return Label{}, fmt.Errorf("invalid label %q: %w", s, err)
		}
		l.pkg = pkg
		if found {
			l.name = name
		} else {
			if pkg == "" {
				return Label{}, fmt.Errorf("invalid label %q: missing package and target name", s)
			}
			// "//pkg" is shorthand for "//pkg:pkg" using the last
			// package segment.
			l.name = pkg[strings.LastIndex(pkg, "/")+1:]
		}
		if err := validateTarget(l.name); err != nil {
			return Label{}, fmt.Errorf("invalid label %q: %w", s, err)
		}
		l.str = render(l)
		return l, nil
	}

	// Relative: ":name" or a bare path like "defs.bzl" or "sub/defs.bzl".
	if strings.HasPrefix(rest, ":") {
		l.name = rest[1:]
		if err := validateTarget(l.name); err != nil {
			return Label{}, fmt.Errorf("invalid label %q: %w", s, err)
		}
		l.str = ":" + l.name
		return l, nil
	}
	if strings.Contains(rest, ":") {
		return Label{}, fmt.Errorf("invalid label %q: relative label may not contain ':' (write //package:target instead)", s)
	}
	if strings.HasPrefix(rest, "/") {
		return Label{}, fmt.Errorf("invalid label %q: absolute labels start with '//'", s)
	}
	l.name = rest
	if err := validateTarget(l.name); err != nil {
		return Label{}, fmt.Errorf("invalid label %q: %w", s, err)
	}
	l.str = l.name
	return l, nil
}

// MustParse is Parse that panics on error, for labels known at compile
// time (tests, defaults).
func MustParse(s string) Label {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// render computes the shortest spelling of an absolute label. The
// target name is omitted when it repeats the last package segment, and
// "@repo//:repo" collapses to "@repo".
func render(l Label) string {
	var b strings.Builder
	if l.hasRepo {
		if l.canonical {
			b.WriteString("@@")
		} else {
			b.WriteString("@")
		}
		b.WriteString(l.repo)
		if l.pkg == "" && l.name == l.repo {
			return b.String()
		}
	}
	b.WriteString("//")
	b.WriteString(l.pkg)
	if l.pkg == "" || l.name != l.pkg[strings.LastIndex(l.pkg, "/")+1:] {
		b.WriteString(":")
		b.WriteString(l.name)
	}
	return b.String()
}

// Repo returns the repository name without the "@" or "@@" prefix.
// Empty for labels in the current repository, including the "@//pkg"
// form (use HasRepo to tell these apart).
func (l Label) Repo() string { return l.repo }

// HasRepo reports whether the label carried an explicit repository
// part, even an empty one ("@//pkg").
func (l Label) HasRepo() bool { return l.hasRepo }

// IsCanonical reports whether the repository name was spelled with
// "@@" and therefore bypasses repository mapping.
func (l Label) IsCanonical() bool { return l.canonical }

// Package returns the package path. Empty for root-package labels
// ("//:gen") and for relative labels.
func (l Label) Package() string { return l.pkg }

// IsAbsolute reports whether the label is anchored at a repository
// root ("//" was present, or implied by a bare "@repo").
func (l Label) IsAbsolute() bool { return l.absolute }

// IsRelative reports whether the label is relative to the package of
// the file it appears in.
func (l Label) IsRelative() bool { return !l.absolute }

// IsExternal reports whether the label names a target in another
// repository. The "@//pkg" form is not external: its repository part
// is empty, meaning the main repository.
func (l Label) IsExternal() bool { return l.hasRepo && l.repo != "" }

// Name returns the target name. For relative path labels this is the
// whole path ("sub/defs.bzl").
func (l Label) Name() string { return l.name }

// String returns the shortest canonical spelling, satisfying
// fmt.Stringer.
func (l Label) String() string { return l.str }

// IsZero reports whether this is an uninitialized zero-value Label.
func (l Label) IsZero() bool { return l.str == "" }

// MarshalText implements encoding.TextMarshaler. A zero-value Label
// marshals as the empty string.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.str), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input
// produces a zero value, the symmetric counterpart to MarshalText.
func (l *Label) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*l = Label{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return fmt.Errorf("unmarshal Label: %w", err)
	}
	*l = parsed
	return nil
}

// validateRepo checks a repository name. Apparent names use letters,
// digits, '-', '_', and '.'; canonical bzlmod names additionally use
// '~' and '+' as version separators. The empty name is allowed: "@//x"
// and "@@//x" refer to the main repository.
func validateRepo(repo string) error {
	for _, r := range repo {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == '~' || r == '+':
		default:
			return fmt.Errorf("repository name contains %q", r)
		}
	}
	return nil
}

// validatePackage checks a package path: slash-separated non-empty
// segments, no '.' or '..' segments, no colon.
func validatePackage(pkg string) error {
	if pkg == "" {
		return nil
	}
	if strings.HasPrefix(pkg, "/") || strings.HasSuffix(pkg, "/") {
		return fmt.Errorf("package %q has a leading or trailing '/'", pkg)
	}
	for _, seg := range strings.Split(pkg, "/") {
		switch seg {
		case "":
			return fmt.Errorf("package %q contains an empty segment", pkg)
		case ".", "..":
			return fmt.Errorf("package %q contains a %q segment", pkg, seg)
		}
	}
	return nil
}

// validateTarget checks a target name. Target names may contain
// slashes ("testdata/input.txt") but may not escape the package or
// restate the label syntax.
func validateTarget(name string) error {
	if name == "" {
		return fmt.Errorf("empty target name")
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("target name %q starts with '/'", name)
	}
	if strings.Contains(name, ":") {
		return fmt.Errorf("target name %q contains ':'", name)
	}
	for _, seg := range strings.Split(name, "/") {
		switch seg {
		case "":
			return fmt.Errorf("target name %q contains an empty segment", name)
		case ".", "..":
			return fmt.Errorf("target name %q contains a %q segment", name, seg)
		}
	}
	return nil
}
