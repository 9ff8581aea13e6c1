// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scope implements line-oriented scope extraction over
// TOML-flavored documents. A document may tag runs of lines with scope
// headers (lines consisting solely of @tag tokens); extraction renders
// a view of the document containing only the lines attributed to a
// requested scope plus all global content, blanking everything else
// while preserving line positions exactly.
//
// The engine does no TOML parsing. It treats the document as plain
// lines, so any line-based format can carry scope markers.
package scope

import (
	"strings"

	"github.com/pdiddy/quill/pkg/types"
)

// LineKind classifies a document line.
type LineKind int

const (
	// Content is any line that is not a scope header, including blank
	// lines and lines that merely resemble headers.
	Content LineKind = iota

	// Header is a line consisting solely of one or more @tag tokens.
	Header
)

// Line is one classified line of a document. Content lines carry the
// verbatim text; header lines carry the declared tags in order of
// first appearance, duplicates collapsed.
type Line struct {
	Kind LineKind
	Text string
	Tags []string
}

// Classify decides whether a line is a scope header or content.
// Surrounding whitespace is ignored for the test only; content lines
// keep their original text. A line is a header only if every
// whitespace-separated token is @ followed by a valid tag. Any
// deviation, a stray character, an empty tag, mixed content, makes the
// whole line content, so lines that merely look like headers are never
// silently dropped.
func Classify(line string) Line {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Line{Kind: Content, Text: line}
	}

	var tags []string
	seen := make(map[string]bool, len(fields))
	for _, tok := range fields {
		name, ok := strings.CutPrefix(tok, "@")
		if !ok || !ValidTag(name) {
			return Line{Kind: Content, Text: line}
		}
		if !seen[name] {
			seen[name] = true
			tags = append(tags, name)
		}
	}

	return Line{Kind: Header, Tags: tags}
}

// ValidTag reports whether name is a legal scope tag: a non-empty run
// of ASCII letters, digits, underscores, and dashes.
func ValidTag(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// context is the scope attribution in effect at a scan position. A nil
// tag set means the global scope. The zero value is the initial
// context: everything before the first header is global.
type context struct {
	tags []string
}

// isGlobal reports whether content here is visible under every
// requested scope.
func (c context) isGlobal() bool {
	return c.tags == nil
}

// apply returns the context established by a header. Headers replace
// the prior context rather than accumulating, and the reserved tag
// "global" wins over any named tags on the same header.
func (c context) apply(header Line) context {
	for _, tag := range header.Tags {
		if tag == types.GlobalTag {
			return context{}
		}
	}
	return context{tags: header.Tags}
}

// includes reports whether content attributed to this context is
// visible under the requested scope. Global content is visible under
// any request; named content is visible only when the request names
// one of its tags.
func (c context) includes(requested types.RequestedScope) bool {
	if c.isGlobal() {
		return true
	}
	if requested.IsGlobal() {
		return false
	}
	for _, tag := range c.tags {
		if tag == requested.Name {
			return true
		}
	}
	return false
}
