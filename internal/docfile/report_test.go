package docfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "app.toml", sampleDoc)

	ds, err := InventoryFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, ds.Path)
	assert.Equal(t, 8, ds.LineCount)
	require.Len(t, ds.Scopes, 2)
	assert.Equal(t, "dev", ds.Scopes[0].Tag)
	assert.Equal(t, 3, ds.Scopes[0].FirstLine)
	assert.Equal(t, 1, ds.Scopes[0].HeaderCount)
	assert.Equal(t, "prod", ds.Scopes[1].Tag)
	assert.Equal(t, 6, ds.Scopes[1].FirstLine)
}

func TestInventory(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b.toml", "@dev\nx = 1\n")
	writeDoc(t, dir, "a.toml", sampleDoc)
	writeDoc(t, dir, "a.dev.toml", "a prior extraction output")
	writeDoc(t, dir, "plain.toml", "no headers here")

	report, err := Inventory(dir)
	require.NoError(t, err)

	require.Len(t, report.Documents, 3)
	// Lexical order, prior views excluded.
	assert.Equal(t, filepath.Join(dir, "a.toml"), report.Documents[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.toml"), report.Documents[1].Path)
	assert.Equal(t, filepath.Join(dir, "plain.toml"), report.Documents[2].Path)

	assert.Empty(t, report.Documents[2].Scopes)
	assert.Equal(t, 3, report.Summary.Documents)
	assert.Equal(t, 2, report.Summary.Scopes, "dev and prod, counted once across documents")
	assert.False(t, report.Summary.Timestamp.IsZero())
}

func TestReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "app.toml", sampleDoc)

	report, err := Inventory(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "scopes.yaml")
	require.NoError(t, WriteReport(path, report))

	loaded, err := ReadReport(path)
	require.NoError(t, err)
	require.Len(t, loaded.Documents, 1)
	assert.Equal(t, report.Documents[0].Scopes, loaded.Documents[0].Scopes)
	assert.Equal(t, report.Summary.Documents, loaded.Summary.Documents)
}

func TestReadReportMissing(t *testing.T) {
	_, err := ReadReport(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scope report")
}
