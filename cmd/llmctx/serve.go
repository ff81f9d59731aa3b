package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/llmctx/internal/web"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Edit data.json in a browser form",
		Long: `Serve starts a local web form for data.json.

The form shows the detected system facts and lets you pick your IDE,
shell, CI and deployment plans and Git account. Saving overwrites
data.json and records a snapshot in the history database.

The form has no authentication and listens on 127.0.0.1 by default.

Examples:
  # Serve on the default address (127.0.0.1:8501)
  llmctx serve

  # Serve on another port
  llmctx serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", "",
		"Listen address (default: 127.0.0.1:8501 or listenAddr from the config file)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ws, closeWS, err := newWorkspace(cfg, logger, newCollectFunc(cfg, logger))
	if err != nil {
		return err
	}
	defer closeWS()

	srv, err := web.NewServer(ws, web.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving the form at http://%s (press Ctrl+C to stop)\n", cfg.ListenAddr)
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}
