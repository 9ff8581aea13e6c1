// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ScopeDeclaration describes one distinct scope tag declared in a
// document: where it first appears and how many headers declare it.
type ScopeDeclaration struct {
	Tag         string `json:"tag" yaml:"tag"`
	FirstLine   int    `json:"first_line" yaml:"first_line"`
	HeaderCount int    `json:"header_count" yaml:"header_count"`
}

// DocumentScopes is the scope inventory of a single document.
type DocumentScopes struct {
	Path      string             `json:"path" yaml:"path"`
	LineCount int                `json:"line_count" yaml:"line_count"`
	Scopes    []ScopeDeclaration `json:"scopes" yaml:"scopes"`
}

// ScopeReport is the on-disk representation of a scope inventory run.
// The user can save an inventory to a file and reload it later without
// re-scanning the documents.
type ScopeReport struct {
	Documents []DocumentScopes `yaml:"documents"`
	Summary   ReportSummary    `yaml:"summary"`
}

// ReportSummary stores inventory statistics and a timestamp.
type ReportSummary struct {
	Documents int       `yaml:"documents"`
	Scopes    int       `yaml:"scopes"`
	Timestamp time.Time `yaml:"timestamp"`
}
