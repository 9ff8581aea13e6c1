package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quill/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Catalog, string) {
	t.Helper()
	tmpDir := t.TempDir()

	docsDir := filepath.Join(tmpDir, "docs")
	require.NoError(t, os.MkdirAll(docsDir, 0o755))

	cfg := types.CatalogConfig{
		CatalogDir: filepath.Join(tmpDir, "catalog"),
		MaxResults: 20,
	}
	c, err := NewCatalog(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, docsDir
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const appDoc = `title = "App"

@dev
debug = true

@dev @test
extra_checks = true

@prod
optimized = true
`

// --- Ingest ---

func TestIngest(t *testing.T) {
	c, docsDir := testSetup(t)

	writeDoc(t, docsDir, "app.toml", appDoc)
	writeDoc(t, docsDir, "db.toml", "@prod\npool = 10\n")
	writeDoc(t, docsDir, "app.dev.toml", "a prior extraction output")
	writeDoc(t, docsDir, "readme.txt", "@dev ignored")

	var buf strings.Builder
	summary, err := c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Indexed)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Total())
	assert.Contains(t, buf.String(), "indexed app.toml (3 scopes)")
}

func TestIngestSkipsUnchanged(t *testing.T) {
	c, docsDir := testSetup(t)
	writeDoc(t, docsDir, "app.toml", appDoc)

	var buf strings.Builder
	_, err := c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)

	summary, err := c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Indexed)
}

func TestIngestUpdatesChanged(t *testing.T) {
	c, docsDir := testSetup(t)
	path := writeDoc(t, docsDir, "app.toml", appDoc)

	var buf strings.Builder
	_, err := c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)

	// Rewrite the document with a different scope set and a newer
	// mod time.
	require.NoError(t, os.WriteFile(path, []byte("@staging\nreplicas = 2\n"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	summary, err := c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	// Old scopes are gone, the new one is queryable.
	results, err := c.Lookup(context.Background(), "dev")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = c.Lookup(context.Background(), "staging")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, path, results[0].Path)
}

// --- Lookup ---

func TestLookup(t *testing.T) {
	c, docsDir := testSetup(t)
	appPath := writeDoc(t, docsDir, "app.toml", appDoc)
	dbPath := writeDoc(t, docsDir, "db.toml", "@prod\npool = 10\n@prod\ntimeout = 5\n")

	var buf strings.Builder
	_, err := c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)

	results, err := c.Lookup(context.Background(), "prod")
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Sorted by path.
	assert.Equal(t, appPath, results[0].Path)
	assert.Equal(t, dbPath, results[1].Path)
	assert.Equal(t, 9, results[0].FirstLine)
	assert.Equal(t, 2, results[1].HeaderCount, "repeated headers accumulate")

	results, err = c.Lookup(context.Background(), "dev")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].FirstLine)
	assert.Equal(t, 2, results[0].HeaderCount)

	// Unknown tag is an empty result, not an error.
	results, err = c.Lookup(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLookupInvalidTag(t *testing.T) {
	c, _ := testSetup(t)
	_, err := c.Lookup(context.Background(), "bad tag")
	var invalid *types.InvalidScopeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "bad tag", invalid.Scope)
}

// --- Search ---

func TestSearch(t *testing.T) {
	c, docsDir := testSetup(t)
	appPath := writeDoc(t, docsDir, "app.toml", appDoc)
	writeDoc(t, docsDir, "db.toml", "@prod\npool = 10\n")

	var buf strings.Builder
	_, err := c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)

	matches, err := c.Search(context.Background(), "optimized", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, appPath, matches[0].Path)
	assert.Contains(t, matches[0].Snippet, "[optimized]")

	matches, err = c.Search(context.Background(), "nosuchword", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchReflectsUpdates(t *testing.T) {
	c, docsDir := testSetup(t)
	path := writeDoc(t, docsDir, "app.toml", "@dev\nspecialword = 1\n")

	var buf strings.Builder
	_, err := c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("@dev\nreplaced = 1\n"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
	_, err = c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)

	matches, err := c.Search(context.Background(), "specialword", 0)
	require.NoError(t, err)
	assert.Empty(t, matches, "FTS index should drop stale content on update")

	matches, err = c.Search(context.Background(), "replaced", 0)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

// --- ExportYAML ---

func TestExportYAML(t *testing.T) {
	c, docsDir := testSetup(t)
	writeDoc(t, docsDir, "app.toml", appDoc)
	writeDoc(t, docsDir, "plain.toml", "no headers\n")

	var buf strings.Builder
	_, err := c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)

	require.NoError(t, c.ExportYAML(context.Background()))

	data, err := os.ReadFile(filepath.Join(c.catalogDir, exportFile))
	require.NoError(t, err)

	var report types.ScopeReport
	require.NoError(t, yaml.Unmarshal(data, &report))

	require.Len(t, report.Documents, 2)
	assert.Equal(t, 2, report.Summary.Documents)
	assert.Equal(t, 3, report.Summary.Scopes)

	// app.toml carries its declarations; plain.toml carries none.
	var appScopes, plainScopes int
	for _, d := range report.Documents {
		if strings.HasSuffix(d.Path, "app.toml") {
			appScopes = len(d.Scopes)
		} else {
			plainScopes = len(d.Scopes)
		}
	}
	assert.Equal(t, 3, appScopes)
	assert.Equal(t, 0, plainScopes)
}

// --- Reopen ---

func TestCatalogPersistsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()
	docsDir := filepath.Join(tmpDir, "docs")
	require.NoError(t, os.MkdirAll(docsDir, 0o755))
	writeDoc(t, docsDir, "app.toml", appDoc)

	cfg := types.CatalogConfig{CatalogDir: filepath.Join(tmpDir, "catalog")}

	c, err := NewCatalog(cfg)
	require.NoError(t, err)
	var buf strings.Builder
	_, err = c.Ingest(context.Background(), docsDir, &buf)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = NewCatalog(cfg)
	require.NoError(t, err)
	defer c.Close()

	results, err := c.Lookup(context.Background(), "dev")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
