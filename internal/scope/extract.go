// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scope

import (
	"strings"

	"github.com/pdiddy/quill/pkg/types"
)

// Extract renders the view of document visible under the requested
// scope. The output has exactly one line per input line: headers
// render empty, global content renders unchanged, content in a named
// scope renders unchanged when the request names one of its tags, and
// everything else renders empty. Lines are joined with \n, so a
// trailing newline in the input survives.
//
// Requesting a name outside the tag charset fails with
// *types.InvalidScopeError. Requesting a named scope the document never
// declares fails with *types.ScopeNotFoundError. Lines that merely
// resemble headers are not errors; they pass through as content.
func Extract(document string, requested types.RequestedScope) (string, error) {
	if !requested.IsGlobal() && !ValidTag(requested.Name) {
		return "", &types.InvalidScopeError{Scope: requested.Name}
	}

	raw := strings.Split(document, "\n")
	lines := make([]Line, len(raw))
	declared := make(map[string]bool)
	for i, text := range raw {
		lines[i] = Classify(text)
		for _, tag := range lines[i].Tags {
			declared[tag] = true
		}
	}

	if !requested.IsGlobal() && !declared[requested.Name] {
		return "", &types.ScopeNotFoundError{Scope: requested.Name}
	}

	out := make([]string, len(raw))
	var ctx context
	for i, line := range lines {
		if line.Kind == Header {
			ctx = ctx.apply(line)
			continue // out[i] stays empty
		}
		if ctx.includes(requested) {
			out[i] = line.Text
		}
	}

	return strings.Join(out, "\n"), nil
}

// Scopes inventories the named scopes a document declares, in order of
// first appearance. Each entry carries the 1-based line of the first
// header declaring the tag and the total number of headers declaring
// it. The reserved tag "global" is omitted: the global scope always
// exists whether or not a header names it.
func Scopes(document string) []types.ScopeDeclaration {
	var decls []types.ScopeDeclaration
	index := make(map[string]int)

	for i, text := range strings.Split(document, "\n") {
		line := Classify(text)
		if line.Kind != Header {
			continue
		}
		for _, tag := range line.Tags {
			if tag == types.GlobalTag {
				continue
			}
			if at, ok := index[tag]; ok {
				decls[at].HeaderCount++
				continue
			}
			index[tag] = len(decls)
			decls = append(decls, types.ScopeDeclaration{
				Tag:         tag,
				FirstLine:   i + 1,
				HeaderCount: 1,
			})
		}
	}

	return decls
}
