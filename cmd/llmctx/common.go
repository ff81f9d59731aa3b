package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/llmctx/internal/collector"
	"github.com/nao1215/llmctx/internal/config"
	applog "github.com/nao1215/llmctx/internal/log"
	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/shell"
	"github.com/nao1215/llmctx/internal/store"
	"github.com/nao1215/llmctx/internal/workspace"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getInheritedString reads a persistent root flag, or "" when it is not defined.
func getInheritedString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// buildConfig creates a Config from defaults, the config file and the
// global flags, and validates it.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(getInheritedString(cmd, "config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if dataDir := getInheritedString(cmd, "data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a structured logger that masks secrets and network
// identifiers. Debug with verbose, otherwise warnings only.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return applog.NewSecureLogger(w, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newCollectFunc runs every collector with the settings of cfg.
func newCollectFunc(cfg *config.Config, logger *slog.Logger) workspace.CollectFunc {
	env := collector.NewEnv(shell.NewExecRunner(cfg.CommandTimeout), logger)
	settings := cfg.CollectorSettings()
	return func(ctx context.Context) (*model.SystemInfo, error) {
		return collector.CollectAll(ctx, env, settings)
	}
}

// openHistory opens the snapshot database, or returns nil when history
// is disabled in the configuration.
func openHistory(cfg *config.Config, create bool) (*store.HistoryDB, error) {
	if cfg.HistoryDir == "" {
		return nil, nil
	}
	opts := store.DefaultOptions()
	opts.CreateIfNotExists = create
	db, err := store.Open(cfg.HistoryDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// newWorkspace wires a workspace from cfg. The returned close function
// releases the history database.
func newWorkspace(cfg *config.Config, logger *slog.Logger, collect workspace.CollectFunc) (*workspace.Workspace, func(), error) {
	db, err := openHistory(cfg, true)
	if err != nil {
		return nil, nil, err
	}

	opts := []workspace.Option{
		workspace.WithFormOptions(cfg.Options),
		workspace.WithLogger(logger),
	}
	closeFn := func() {}
	if db != nil {
		opts = append(opts, workspace.WithHistory(db))
		closeFn = func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close history database", "error", err)
			}
		}
	}
	return workspace.New(cfg.DataFile(), collect, opts...), closeFn, nil
}

// createOutput opens path for writing, or returns stdout when path is empty.
// Files are created with 0600 since facts include network details.
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
