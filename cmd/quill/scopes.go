// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quill/internal/docfile"
	"github.com/pdiddy/quill/pkg/types"
)

var scopesCmd = &cobra.Command{
	Use:   "scopes <file|dir>",
	Short: "List the scopes declared in documents",
	Long: `Scopes inventories the scope tags declared in a document or in every
.toml document of a directory, with the line of each tag's first header
and the number of headers declaring it. The reserved tag "global" is
not listed; the global scope always exists.

Use --out to save the inventory as a YAML report.`,
	Args: cobra.ExactArgs(1),
	RunE: runScopes,
}

func runScopes(cmd *cobra.Command, args []string) error {
	report, err := buildReport(args[0])
	if err != nil {
		return err
	}

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		if err := docfile.WriteReport(outPath, report); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", outPath)
		return nil
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func buildReport(path string) (types.ScopeReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.ScopeReport{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return docfile.Inventory(path)
	}

	ds, err := docfile.InventoryFile(path)
	if err != nil {
		return types.ScopeReport{}, err
	}
	return types.ScopeReport{
		Documents: []types.DocumentScopes{ds},
		Summary: types.ReportSummary{
			Documents: 1,
			Scopes:    len(ds.Scopes),
			Timestamp: time.Now(),
		},
	}, nil
}

func printReport(report types.ScopeReport) {
	for _, doc := range report.Documents {
		fmt.Printf("%s (%d lines)\n", doc.Path, doc.LineCount)
		if len(doc.Scopes) == 0 {
			fmt.Println("  (global only)")
			continue
		}
		for _, d := range doc.Scopes {
			fmt.Printf("  @%-20s first at line %-5d %d header(s)\n", d.Tag, d.FirstLine, d.HeaderCount)
		}
	}
	fmt.Printf("\n%d document(s), %d distinct scope(s)\n", report.Summary.Documents, report.Summary.Scopes)
}

func init() {
	scopesCmd.Flags().String("out", "", "write the inventory to a YAML report file")
	scopesCmd.Flags().Bool("json", false, "output the inventory as JSON")

	rootCmd.AddCommand(scopesCmd)
}
