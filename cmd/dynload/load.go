package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/probablyarth/dynload-go"
	"github.com/probablyarth/dynload-go/bundle"
	"github.com/probablyarth/dynload-go/httpinject"
	"github.com/probablyarth/dynload-go/manifest"
)

const (
	flagManifest     = "file"
	flagRetry        = "retry"
	flagTimeout      = "timeout"
	flagFetchTimeout = "fetch-timeout"
	flagMaxBytes     = "max-bytes"
)

func newLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load -f MANIFEST",
		Short: "Load every resource of a manifest and report which components became available",
		Args:  cobra.NoArgs,
		Example: `  # Load a manifest, retrying every failed resource twice.
  dynload load -f resources.yaml --retry 2
`,
		RunE: runLoad,
	}

	cmd.Flags().StringP(flagManifest, "f", "", "path to the resource manifest (YAML or JSON)")
	cmd.Flags().Int(flagRetry, 0, "retry budget for resources without their own, overrides the manifest")
	cmd.Flags().Duration(flagTimeout, 0, "give up waiting for the batch after this long (0 waits forever)")
	cmd.Flags().Duration(flagFetchTimeout, 30*time.Second, "timeout of a single HTTP fetch")
	cmd.Flags().Int64(flagMaxBytes, httpinject.DefaultMaxBytes, "maximum size of a fetched bundle")
	_ = cmd.MarkFlagRequired(flagManifest)

	return cmd
}

func runLoad(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	path, _ := flags.GetString(flagManifest)
	timeout, _ := flags.GetDuration(flagTimeout)
	fetchTimeout, _ := flags.GetDuration(flagFetchTimeout)
	maxBytes, _ := flags.GetInt64(flagMaxBytes)

	m, err := manifest.Load(path)
	if err != nil {
		return err
	}
	batch, err := m.Batch()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if flags.Changed(flagRetry) {
		retry, _ := flags.GetInt(flagRetry)
		if retry < 0 {
			return fmt.Errorf("--%s must not be negative", flagRetry)
		}
		batch.Retry = retry
	}

	logger := slog.Default()
	s := newStack(&http.Client{Timeout: fetchTimeout}, maxBytes, logger)
	coord := dynload.NewCoordinator(s.loader, s.artifacts, dynload.WithCoordinatorLogger(logger))

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := coord.LoadAll(ctx, batch)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	renderResult(cmd, batch, res)
	return nil
}

func renderResult(cmd *cobra.Command, batch dynload.Batch, res dynload.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Name", "URL", "Status", "Version"})
	for _, r := range batch.Resources {
		status, version := "missing", ""
		if artifact, ok := res.Components[r.Name]; ok {
			status = "loaded"
			if b, ok := artifact.(*bundle.Bundle); ok {
				version = b.Version
			}
		}
		t.AppendRow(table.Row{r.Name, r.URL, status, version})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}
