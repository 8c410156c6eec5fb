package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/probablyarth/dynload-go"
	"github.com/probablyarth/dynload-go/internal/config"
	"github.com/probablyarth/dynload-go/internal/server"
	"github.com/probablyarth/dynload-go/metrics"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve a process-wide loader over HTTP",
		Long: `serve keeps one loader alive for the lifetime of the process and accepts
manifests on POST /v1/batches. It is configured through DYNLOAD_* environment
variables; --loglevel and --logformat override the logging ones.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()

	logger := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if cmd.Flags().Changed(flagLogLevel) || cmd.Flags().Changed(flagLogFormat) {
		logger = slog.Default()
	}

	logger.Info("dynload: starting",
		"listen_addr", cfg.ListenAddr,
		"retry", cfg.Retry,
		"fetch_timeout", cfg.FetchTimeout,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	obs, err := metrics.NewObserver(reg)
	if err != nil {
		return err
	}

	s := newStack(&http.Client{Timeout: cfg.FetchTimeout}, cfg.MaxBytes, logger, dynload.WithObserver(obs))
	srv := server.NewServer(cfg.ListenAddr, s.loader, s.artifacts, reg, logger, server.WithDefaultRetry(cfg.Retry))

	if err := srv.Run(cmd.Context()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
