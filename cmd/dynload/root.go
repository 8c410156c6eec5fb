package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/probablyarth/dynload-go"
	"github.com/probablyarth/dynload-go/bundle"
	"github.com/probablyarth/dynload-go/httpinject"
	"github.com/probablyarth/dynload-go/internal/config"
)

const (
	flagLogLevel  = "loglevel"
	flagLogFormat = "logformat"
)

var logLevels = []string{"debug", "info", "warn", "error"}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dynload [sub-command]",
		Short: "Load remote resource bundles on demand",
		Long: `dynload fetches resource bundles over HTTP, deduplicating concurrent
requests for the same URL, retrying failed loads and caching successes for
the lifetime of the process.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := loggerFromFlags(cmd)
			if err != nil {
				return fmt.Errorf("could not build logger: %w", err)
			}
			slog.SetDefault(logger)
			return nil
		},
		SilenceUsage: true,
	}

	registerLoggingFlags(cmd.PersistentFlags())
	cmd.AddCommand(newLoadCommand(), newServeCommand())
	return cmd
}

func registerLoggingFlags(flags *pflag.FlagSet) {
	flags.String(flagLogLevel, "warn", "set the log level (debug, info, warn, error)")
	flags.StringP(flagLogFormat, "l", "text", "set the log format (text, json)")
}

func loggerFromFlags(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := cmd.Flags().GetString(flagLogLevel)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(logLevels, level) {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	format, err := cmd.Flags().GetString(flagLogFormat)
	if err != nil {
		return nil, err
	}
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	return config.NewLogger(cmd.ErrOrStderr(), config.ParseLogLevel(level), format), nil
}

// stack is the loader wiring shared by the load and serve commands.
type stack struct {
	artifacts *dynload.Artifacts
	loader    *dynload.Loader
}

func newStack(client *http.Client, maxBytes int64, logger *slog.Logger, opts ...dynload.Option) *stack {
	artifacts := dynload.NewArtifacts()
	inj := httpinject.New(bundle.NewExecutor(artifacts),
		httpinject.WithClient(client),
		httpinject.WithMaxBytes(maxBytes),
		httpinject.WithLogger(logger),
	)
	opts = append([]dynload.Option{dynload.WithLogger(logger)}, opts...)
	return &stack{
		artifacts: artifacts,
		loader:    dynload.NewLoader(inj, opts...),
	}
}
