// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/quill/internal/catalog"
	"github.com/pdiddy/quill/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the scope catalog (index, lookup, search, export)",
	Long: `Catalog maintains a local SQLite inventory of scoped documents so a
tree of TOML files can be queried for scopes without re-scanning every
file. Use subcommands to index a directory, look up which documents
declare a scope, or search indexed content.`,
}

// --- index subcommand ---

var catalogIndexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Index the scope inventory of every document in a directory",
	Long: `Index scans a directory of .toml documents, records each document's
declared scopes in the catalog database, and keeps indexed content
searchable. Unchanged documents are skipped on subsequent runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogIndex,
}

func runCatalogIndex(cmd *cobra.Command, args []string) error {
	c, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	summary, err := c.Ingest(context.Background(), args[0], os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- lookup subcommand ---

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <scope>",
	Short: "List the indexed documents declaring a scope",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogLookup,
}

func runCatalogLookup(cmd *cobra.Command, args []string) error {
	c, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	results, err := c.Lookup(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Printf("No indexed documents declare @%s.\n", args[0])
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-50s  %-10s  %-10s  %s\n", "Document", "Lines", "First", "Headers")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 84))
	for _, r := range results {
		path := r.Path
		if len(path) > 50 {
			path = "..." + path[len(path)-47:]
		}
		fmt.Fprintf(os.Stdout, "%-50s  %-10d  %-10d  %d\n", path, r.LineCount, r.FirstLine, r.HeaderCount)
	}
	fmt.Fprintf(os.Stdout, "\n%d document(s)\n", len(results))
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over indexed document content",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	c, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	matches, err := c.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("No matches found.")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%s: %s\n", m.Path, m.Snippet)
	}
	fmt.Printf("\n%d match(es)\n", len(matches))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog inventory to YAML",
	RunE:  runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	c, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.ExportYAML(context.Background()); err != nil {
		return err
	}
	fmt.Println("Exported catalog inventory to export.yaml")
	return nil
}

// --- shared helpers ---

func openCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")
	if catalogDir == "" {
		catalogDir = viper.GetString("catalog.catalog_dir")
	}
	if catalogDir == "" {
		catalogDir = ".quill"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return catalog.NewCatalog(types.CatalogConfig{
		CatalogDir: catalogDir,
		MaxResults: maxResults,
	})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", "", "directory for the catalog database (default: .quill)")
	catalogCmd.PersistentFlags().Int("max-results", 20, "maximum number of search results")

	catalogLookupCmd.Flags().Bool("json", false, "output results as JSON")
	catalogSearchCmd.Flags().Int("limit", 0, "maximum matches (0 = use default)")

	catalogCmd.AddCommand(catalogIndexCmd)
	catalogCmd.AddCommand(catalogLookupCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
