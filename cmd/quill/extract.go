// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/quill/internal/docfile"
	"github.com/pdiddy/quill/internal/scope"
	"github.com/pdiddy/quill/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file|dir>",
	Short: "Extract a scope from one document or a directory of documents",
	Long: `Extract renders the view of a document visible under one scope:
header lines and lines belonging to other scopes are blanked, global
content and the requested scope's content pass through unchanged, and
line positions are preserved so diagnostics against the view still
point at the right place in the source.

A single file writes <base>.<scope>.toml next to the source (or under
--out). With --batch the argument is a directory and every .toml file
in it is extracted; files that do not declare the scope are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	requested, err := requestedScopeFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg := extractConfig(cmd)
	batch, _ := cmd.Flags().GetBool("batch")

	if batch {
		summary, err := docfile.ExtractAll(args[0], requested, cfg, os.Stdout)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
		}
		return nil
	}

	if cfg.Stdout {
		doc, err := docfile.Load(args[0])
		if err != nil {
			return err
		}
		view, err := scope.Extract(doc, requested)
		if err != nil {
			return err
		}
		fmt.Print(view)
		return nil
	}

	outPath, err := docfile.ExtractFile(args[0], requested, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Extracted %s to %s\n", requested, outPath)
	return nil
}

// requestedScopeFromFlags builds the scope request from --scope/--global.
func requestedScopeFromFlags(cmd *cobra.Command) (types.RequestedScope, error) {
	global, _ := cmd.Flags().GetBool("global")
	name, _ := cmd.Flags().GetString("scope")

	if global {
		if name != "" {
			return types.RequestedScope{}, fmt.Errorf("--scope and --global are mutually exclusive")
		}
		return types.GlobalScope(), nil
	}
	if name == "" {
		return types.RequestedScope{}, fmt.Errorf("scope required: provide --scope or --global")
	}
	return types.NamedScope(name), nil
}

func extractConfig(cmd *cobra.Command) types.ExtractConfig {
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = viper.GetString("extract.output_dir")
	}
	toStdout, _ := cmd.Flags().GetBool("stdout")

	return types.ExtractConfig{
		OutputDir: outDir,
		Stdout:    toStdout,
	}
}

func init() {
	extractCmd.Flags().String("scope", "", "scope tag to extract")
	extractCmd.Flags().Bool("global", false, "extract the global scope")
	extractCmd.Flags().String("out", "", "output directory for extracted views (default: alongside the source)")
	extractCmd.Flags().Bool("batch", false, "treat the argument as a directory and extract every .toml document")
	extractCmd.Flags().Bool("stdout", false, "print the extracted view instead of writing a file (single document only)")

	rootCmd.AddCommand(extractCmd)
}
