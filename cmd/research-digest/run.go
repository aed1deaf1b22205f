// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run one digest and print the report",
	Long: `Run the full pipeline once for the query and write the report to stdout.

Formats: text prints the final output; json and yaml print the full run
state; html renders the final output as an HTML fragment.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("format", string(report.FormatText), "output format: text, json, yaml, html")
	runCmd.Flags().Int("max-results", 0, "papers requested from each index")
	runCmd.Flags().Int("max-rewrites", -1, "summary rewrites allowed after critique")
	runCmd.Flags().Bool("parallel", false, "query both indexes concurrently")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		viper.Set("search.max_results", n)
	}
	if n, _ := cmd.Flags().GetInt("max-rewrites"); n >= 0 {
		viper.Set("pipeline.max_rewrites", n)
	}

	if cmd.Flags().Changed("parallel") {
		p, _ := cmd.Flags().GetBool("parallel")
		viper.Set("search.parallel", p)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	runner, err := newRunner(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	state, err := runner.Run(ctx, query)
	if err != nil {
		return err
	}
	return report.Write(os.Stdout, state, format)
}
