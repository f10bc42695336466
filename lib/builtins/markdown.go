// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"bytes"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// MarkdownDoc converts one of bazel's HTML documentation fragments to
// Markdown for hover and completion detail. Relative links resolve
// against https://bazel.build, fragment-only links against page (the
// site path of the page documenting the symbol). Unknown tags are
// dropped, so a newer bazel emitting richer HTML degrades to plain
// text instead of leaking markup.
func MarkdownDoc(doc, page string) string {
	if strings.TrimSpace(doc) == "" {
		return ""
	}
	writer := &markdownWriter{
		base: &url.URL{
			Scheme: "https",
			Host:   "bazel.build",
			Path:   "/" + strings.TrimPrefix(page, "/"),
		},
	}

	tokenizer := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF, or malformed markup we cannot recover from.
			return writer.finish()
		case html.TextToken:
			writer.text(string(tokenizer.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			attrs := map[string]string{}
			for hasAttr {
				var key, value []byte
				key, value, hasAttr = tokenizer.TagAttr()
				attrs[string(key)] = string(value)
			}
			writer.open(string(name), attrs)
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			writer.close(string(name))
		}
	}
}

type markdownWriter struct {
	base      *url.URL
	out       []byte
	preDepth  int
	codeDepth int
	anchor    bool
	href      string
}

func (w *markdownWriter) open(tag string, attrs map[string]string) {
	if w.preDepth > 0 {
		return
	}
	switch tag {
	case "a":
		if href := attrs["href"]; href != "" {
			w.anchor = true
			w.href = href
			w.raw("[")
		}
	case "code":
		w.codeDepth++
		w.raw("`")
	case "pre":
		w.preDepth++
		w.hardBreak()
		w.raw("```" + fenceLang(attrs["class"]) + "\n")
	case "p", "ul", "ol":
		w.blankLine()
	case "br":
		w.hardBreak()
	case "li":
		w.lineBreak()
		w.raw("- ")
	case "em", "i":
		w.raw("*")
	case "strong", "b":
		w.raw("**")
	}
}

func (w *markdownWriter) close(tag string) {
	if w.preDepth > 0 && tag != "pre" {
		return
	}
	switch tag {
	case "a":
		if w.anchor {
			w.raw("](" + w.resolve(w.href) + ")")
			w.anchor = false
			w.href = ""
		}
	case "code":
		if w.codeDepth > 0 {
			w.codeDepth--
			w.raw("`")
		}
	case "pre":
		if w.preDepth > 0 {
			w.preDepth--
			if !bytes.HasSuffix(w.out, []byte("\n")) {
				w.raw("\n")
			}
			w.raw("```")
		}
	case "em", "i":
		w.raw("*")
	case "strong", "b":
		w.raw("**")
	}
}

func (w *markdownWriter) text(s string) {
	if w.preDepth > 0 {
		w.raw(s)
		return
	}
	s = collapseSpace(s)
	if w.codeDepth > 0 {
		w.raw(s)
		return
	}
	if len(w.out) == 0 || w.out[len(w.out)-1] == '\n' {
		s = strings.TrimLeft(s, " ")
	}
	w.raw(escapeMarkdown(s))
}

func (w *markdownWriter) raw(s string) {
	w.out = append(w.out, s...)
}

func (w *markdownWriter) trimTrailingSpace() {
	for len(w.out) > 0 {
		last := w.out[len(w.out)-1]
		if last != ' ' && last != '\t' {
			break
		}
		w.out = w.out[:len(w.out)-1]
	}
}

// hardBreak ends the current line with a Markdown hard line break.
func (w *markdownWriter) hardBreak() {
	w.trimTrailingSpace()
	if len(w.out) == 0 || w.out[len(w.out)-1] == '\n' {
		return
	}
	w.raw("  \n")
}

func (w *markdownWriter) lineBreak() {
	w.trimTrailingSpace()
	if len(w.out) == 0 || w.out[len(w.out)-1] == '\n' {
		return
	}
	w.raw("\n")
}

// blankLine separates paragraphs.
func (w *markdownWriter) blankLine() {
	w.trimTrailingSpace()
	if len(w.out) == 0 {
		return
	}
	for !bytes.HasSuffix(w.out, []byte("\n\n")) {
		w.out = append(w.out, '\n')
	}
}

func (w *markdownWriter) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return w.base.ResolveReference(ref).String()
}

func (w *markdownWriter) finish() string {
	return strings.TrimSpace(string(w.out))
}

func fenceLang(class string) string {
	for _, field := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(field, "language-"); ok {
			return lang
		}
	}
	return ""
}

// collapseSpace folds each whitespace run into a single space,
// keeping boundary runs so text flows correctly around inline tags.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteByte(' ')
			inSpace = false
		}
		b.WriteRune(r)
	}
	if inSpace {
		b.WriteByte(' ')
	}
	return b.String()
}

func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\', '`', '*', '_', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
