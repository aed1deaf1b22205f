// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-digest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// credentials is opened once before any subcommand runs.
var credentials *secrets.Store

var rootCmd = &cobra.Command{
	Use:   "research-digest",
	Short: "Summarize academic literature for a research question",
	Long: `research-digest answers a research question from two literature indexes.

Papers are collected from arXiv and OpenAlex and summarized by a language
model. The summary is critiqued and rewritten at most twice, then fact-checked.
The report ends with the titles of the source papers.

Use "serve" for the HTTP service and "run" for a single query.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		envFile, _ := cmd.Flags().GetString("env-file")

		store, err := secrets.Open(dir, envFile)
		if err != nil {
			return err
		}
		credentials = store
		if names := store.Names(); len(names) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", names)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-digest.yaml or ~/.config/research-digest/research-digest.yaml)")
	pf.String("secrets-dir", ".secrets", "directory of one-file-per-secret credentials")
	pf.String("env-file", ".env", "dotenv file consulted for API_KEY")
	pf.String("log-level", "", "debug, info, warn, error, or disable")
	viper.BindPFlag("log_level", pf.Lookup("log-level"))
}

// initConfig layers defaults, the config file, and RESEARCH_DIGEST_* env vars.
func initConfig() {
	setDefaults()

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-digest"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_DIGEST")
	viper.SetEnvKeyReplacer(envKeyReplacer)
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
