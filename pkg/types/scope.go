// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds structures shared between the scope engine, the
// file layer, the catalog, and the CLI.
package types

import "fmt"

// GlobalTag is the reserved scope identifier. A header carrying it
// resets the context to the global scope, and content in the global
// scope is visible under every requested scope.
const GlobalTag = "global"

// ScopeKind distinguishes the two ways a caller can request a scope.
type ScopeKind string

const (
	KindGlobal ScopeKind = "global"
	KindNamed  ScopeKind = "named"
)

// RequestedScope identifies the scope a caller wants extracted:
// either the global scope or a named one.
type RequestedScope struct {
	Kind ScopeKind
	Name string
}

// GlobalScope requests the global scope.
func GlobalScope() RequestedScope {
	return RequestedScope{Kind: KindGlobal}
}

// NamedScope requests the scope with the given tag. The reserved name
// "global" is folded into a global request so both spellings behave
// identically.
func NamedScope(name string) RequestedScope {
	if name == GlobalTag {
		return GlobalScope()
	}
	return RequestedScope{Kind: KindNamed, Name: name}
}

// IsGlobal reports whether the request targets the global scope.
func (r RequestedScope) IsGlobal() bool {
	return r.Kind == KindGlobal
}

// String returns the tag form of the request.
func (r RequestedScope) String() string {
	if r.IsGlobal() {
		return GlobalTag
	}
	return r.Name
}

// ScopeNotFoundError reports a request for a named scope the document
// never declares in any header.
type ScopeNotFoundError struct {
	Scope string
}

func (e *ScopeNotFoundError) Error() string {
	return fmt.Sprintf("scope %q not found in document", e.Scope)
}

// InvalidScopeError reports a requested scope name that violates the
// tag charset. Tags may only contain ASCII letters, ASCII digits,
// underscores, and dashes.
type InvalidScopeError struct {
	Scope string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid scope name %q: scope names may only contain ASCII letters, digits, underscores, and dashes", e.Scope)
}
