// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the quill CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the quill CLI.
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Scope extraction for TOML-flavored documents",
	Long: `quill extracts named scopes from TOML-flavored documents. Scopes are
declared in a file with header lines of @tag tokens; extraction returns
the document with every line outside the requested scope (and outside
the global scope) blanked, preserving line positions exactly.

quill does no TOML parsing. Multiple TOML variants can share one file
through scopes, and each extracted view is the file as a single scope
sees it.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./quill.yaml or ~/.config/quill/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("quill")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "quill"))
		}
	}

	viper.SetEnvPrefix("QUILL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
