// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docfile is the file-handling layer around the scope engine:
// loading and normalizing documents, writing extracted views, and
// batch extraction over directories.
package docfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/quill/internal/scope"
	"github.com/pdiddy/quill/pkg/types"
)

const docExt = ".toml"

// Load reads a document and normalizes CRLF line endings to LF. The
// engine itself never touches line endings; normalizing here keeps \r
// out of extracted views for files written on Windows.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", path, err)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// OutputPath returns the destination for an extracted view of path:
// <base>.<scope><ext> in cfg.OutputDir, or next to the source when no
// output directory is configured. config.toml extracted for dev
// becomes config.dev.toml.
func OutputPath(path string, requested types.RequestedScope, cfg types.ExtractConfig) string {
	dir := cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return filepath.Join(dir, base+"."+requested.String()+ext)
}

// ExtractFile extracts the requested scope from one document and
// writes the view to its output path, returning that path.
func ExtractFile(path string, requested types.RequestedScope, cfg types.ExtractConfig) (string, error) {
	doc, err := Load(path)
	if err != nil {
		return "", err
	}

	view, err := scope.Extract(doc, requested)
	if err != nil {
		return "", fmt.Errorf("extracting %s from %s: %w", requested, path, err)
	}

	outPath := OutputPath(path, requested, cfg)
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, []byte(view), 0o644); err != nil {
		return "", fmt.Errorf("writing extracted view: %w", err)
	}
	return outPath, nil
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any documents failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll extracts the requested scope from every .toml document in
// dir, writing per-file progress to w. Documents whose extracted view
// is already newer than the source are skipped, as are documents that
// simply do not declare the requested scope; a document missing a
// scope does not fail the batch. Prior extraction outputs in the
// directory are ignored.
func ExtractAll(dir string, requested types.RequestedScope, cfg types.ExtractConfig, w io.Writer) (BatchSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading document directory %s: %w", dir, err)
	}

	var summary BatchSummary

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, docExt) || IsExtractedView(name) {
			continue
		}

		path := filepath.Join(dir, name)
		outPath := OutputPath(path, requested, cfg)

		changed, err := hasChanged(path, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		if !changed {
			fmt.Fprintf(w, "skipped %s (up to date)\n", name)
			summary.Skipped++
			continue
		}

		if _, err := ExtractFile(path, requested, cfg); err != nil {
			var notFound *types.ScopeNotFoundError
			if errors.As(err, &notFound) {
				fmt.Fprintf(w, "skipped %s (no scope %q)\n", name, notFound.Scope)
				summary.Skipped++
				continue
			}
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s -> %s\n", name, filepath.Base(outPath))
		summary.Extracted++
	}

	fmt.Fprintf(w, "\nextracted: %d, skipped: %d, failed: %d\n",
		summary.Extracted, summary.Skipped, summary.Failed)

	return summary, nil
}

// IsExtractedView reports whether a file name matches the output
// naming scheme <base>.<tag>.toml, so earlier runs are not re-extracted.
func IsExtractedView(name string) bool {
	base := strings.TrimSuffix(name, docExt)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return scope.ValidTag(base[i+1:])
	}
	return false
}

// hasChanged reports whether the source document is newer than its
// extracted view. Returns true if the view does not exist.
func hasChanged(srcPath, outPath string) (bool, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, fmt.Errorf("stat document %s: %w", srcPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return srcInfo.ModTime().After(outInfo.ModTime()), nil
}
