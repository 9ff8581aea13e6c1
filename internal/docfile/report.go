// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quill/internal/scope"
	"github.com/pdiddy/quill/pkg/types"
)

// InventoryFile builds the scope inventory of a single document.
func InventoryFile(path string) (types.DocumentScopes, error) {
	doc, err := Load(path)
	if err != nil {
		return types.DocumentScopes{}, err
	}
	return types.DocumentScopes{
		Path:      path,
		LineCount: strings.Count(doc, "\n") + 1,
		Scopes:    scope.Scopes(doc),
	}, nil
}

// Inventory builds a report over every .toml document in dir,
// excluding prior extraction outputs. Documents are listed in
// lexical order.
func Inventory(dir string) (types.ScopeReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return types.ScopeReport{}, fmt.Errorf("reading document directory %s: %w", dir, err)
	}

	var report types.ScopeReport
	distinct := make(map[string]bool)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, docExt) || IsExtractedView(name) {
			continue
		}
		ds, err := InventoryFile(filepath.Join(dir, name))
		if err != nil {
			return types.ScopeReport{}, err
		}
		for _, d := range ds.Scopes {
			distinct[d.Tag] = true
		}
		report.Documents = append(report.Documents, ds)
	}

	sort.Slice(report.Documents, func(i, j int) bool {
		return report.Documents[i].Path < report.Documents[j].Path
	})

	report.Summary = types.ReportSummary{
		Documents: len(report.Documents),
		Scopes:    len(distinct),
		Timestamp: time.Now(),
	}
	return report, nil
}

// WriteReport saves a scope inventory to a YAML file.
func WriteReport(path string, report types.ScopeReport) error {
	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshaling scope report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a previously saved scope inventory from disk.
func ReadReport(path string) (*types.ScopeReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scope report: %w", err)
	}
	var report types.ScopeReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing scope report: %w", err)
	}
	return &report, nil
}
