// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog maintains a SQLite inventory of scoped documents so
// a tree of TOML files can be queried for scopes without re-scanning
// every file.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quill/internal/docfile"
	"github.com/pdiddy/quill/internal/scope"
	"github.com/pdiddy/quill/pkg/types"
)

const (
	dbFile     = "quill.db"
	exportFile = "export.yaml"
)

// Catalog manages the scope inventory database.
type Catalog struct {
	db         *sql.DB
	catalogDir string
	maxResults int
}

// NewCatalog opens or creates the inventory database at
// catalogDir/quill.db, creating the schema if it does not exist.
func NewCatalog(cfg types.CatalogConfig) (*Catalog, error) {
	if err := os.MkdirAll(cfg.CatalogDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.CatalogDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	c := &Catalog{
		db:         db,
		catalogDir: cfg.CatalogDir,
		maxResults: maxResults,
	}

	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			line_count INTEGER NOT NULL,
			mod_time TEXT NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scopes (
			document_path TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
			tag TEXT NOT NULL,
			first_line INTEGER NOT NULL,
			header_count INTEGER NOT NULL,
			PRIMARY KEY (document_path, tag)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scopes_tag ON scopes(tag)`,
	}

	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := c.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE documents_fts USING fts5(content, content=documents, content_rowid=rowid)`,
			`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO documents_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := c.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a catalog indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of documents processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest scans every .toml document in dir (prior extraction views
// excluded) and records its scope inventory. Unchanged documents are
// detected by modification time and skipped.
func (c *Catalog) Ingest(ctx context.Context, dir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading document directory %s: %w", dir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".toml") || docfile.IsExtractedView(name) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path := filepath.Join(dir, name)

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = c.db.QueryRowContext(ctx,
			`SELECT mod_time FROM documents WHERE path = ?`, path,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		doc, err := docfile.Load(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		ds := types.DocumentScopes{
			Path:      path,
			LineCount: strings.Count(doc, "\n") + 1,
			Scopes:    scope.Scopes(doc),
		}

		if err := c.ingestDocument(ctx, ds, doc, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d scopes)\n", name, len(ds.Scopes))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d scopes)\n", name, len(ds.Scopes))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (c *Catalog) ingestDocument(ctx context.Context, ds types.DocumentScopes, content, modTime string, isUpdate bool) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM scopes WHERE document_path = ?`, ds.Path); err != nil {
			return fmt.Errorf("deleting old scopes: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (path, line_count, mod_time, content)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			line_count=excluded.line_count, mod_time=excluded.mod_time,
			content=excluded.content`,
		ds.Path, ds.LineCount, modTime, content,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scopes (document_path, tag, first_line, header_count)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range ds.Scopes {
		if _, err := stmt.ExecContext(ctx, ds.Path, d.Tag, d.FirstLine, d.HeaderCount); err != nil {
			return fmt.Errorf("inserting scope %s: %w", d.Tag, err)
		}
	}

	return tx.Commit()
}

// LookupResult is one document declaring a looked-up scope.
type LookupResult struct {
	Path        string `json:"path" yaml:"path"`
	LineCount   int    `json:"line_count" yaml:"line_count"`
	FirstLine   int    `json:"first_line" yaml:"first_line"`
	HeaderCount int    `json:"header_count" yaml:"header_count"`
}

// Lookup returns the documents declaring the given scope tag, sorted
// by path. An unknown tag yields an empty result, not an error; a tag
// outside the charset is rejected.
func (c *Catalog) Lookup(ctx context.Context, tag string) ([]LookupResult, error) {
	if !scope.ValidTag(tag) {
		return nil, &types.InvalidScopeError{Scope: tag}
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT s.document_path, d.line_count, s.first_line, s.header_count
		 FROM scopes s
		 JOIN documents d ON d.path = s.document_path
		 WHERE s.tag = ?
		 ORDER BY s.document_path`, tag)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []LookupResult
	for rows.Next() {
		var r LookupResult
		if err := rows.Scan(&r.Path, &r.LineCount, &r.FirstLine, &r.HeaderCount); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// ContentMatch is one full-text search hit.
type ContentMatch struct {
	Path    string `json:"path" yaml:"path"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

// Search runs an FTS5 full-text query over indexed document content,
// ranked by relevance. A limit of zero uses the catalog default.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]ContentMatch, error) {
	if limit <= 0 {
		limit = c.maxResults
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT d.path, snippet(documents_fts, 0, '[', ']', '...', 8)
		 FROM documents_fts
		 JOIN documents d ON d.rowid = documents_fts.rowid
		 WHERE documents_fts MATCH ?
		 ORDER BY documents_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	var matches []ContentMatch
	for rows.Next() {
		var m ContentMatch
		if err := rows.Scan(&m.Path, &m.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// ExportYAML dumps the full inventory to catalogDir/export.yaml as a
// ScopeReport.
func (c *Catalog) ExportYAML(ctx context.Context) error {
	rows, err := c.db.QueryContext(ctx,
		`SELECT d.path, d.line_count, s.tag, s.first_line, s.header_count
		 FROM documents d
		 LEFT JOIN scopes s ON s.document_path = d.path
		 ORDER BY d.path, s.first_line`)
	if err != nil {
		return fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var report types.ScopeReport
	distinct := make(map[string]bool)
	byPath := make(map[string]int)

	for rows.Next() {
		var (
			path        string
			lineCount   int
			tag         sql.NullString
			firstLine   sql.NullInt64
			headerCount sql.NullInt64
		)
		if err := rows.Scan(&path, &lineCount, &tag, &firstLine, &headerCount); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}

		at, ok := byPath[path]
		if !ok {
			at = len(report.Documents)
			byPath[path] = at
			report.Documents = append(report.Documents, types.DocumentScopes{
				Path:      path,
				LineCount: lineCount,
			})
		}
		if tag.Valid {
			distinct[tag.String] = true
			report.Documents[at].Scopes = append(report.Documents[at].Scopes, types.ScopeDeclaration{
				Tag:         tag.String,
				FirstLine:   int(firstLine.Int64),
				HeaderCount: int(headerCount.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	report.Summary = types.ReportSummary{
		Documents: len(report.Documents),
		Scopes:    len(distinct),
		Timestamp: time.Now(),
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(filepath.Join(c.catalogDir, exportFile), data, 0o644)
}
