// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP summarization service",
	Long: `Serve POST /summarize, GET /health, and GET /metrics.

The provider credential is resolved before the listener opens; a missing
credential stops the process with a configuration error.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().Bool("parallel", false, "query both indexes concurrently")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(runner, cfg.Server, reg, logger)
	logger.Infof("using provider %s model %s", cfg.AI.Provider, cfg.AI.Model)
	return srv.ListenAndServe(ctx)
}
