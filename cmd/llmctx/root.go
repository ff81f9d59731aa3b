package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for llmctx.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llmctx",
		Short: "Generate an LLM context document describing your development environment",
		Long: `llmctx analyzes this machine and your development plans and writes them to
data.json, a document you can hand to an LLM so that generated code matches
your OS, shell, hardware and tooling.

Use 'llmctx collect' to print the raw system facts, 'llmctx serve' to edit
data.json in a browser form, or 'llmctx generate' to write it from flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .llmctx in current or home directory)")
	cmd.PersistentFlags().StringP("data-dir", "d", "",
		"Directory holding data.json (default: ./data)")

	// Add subcommands
	cmd.AddCommand(NewCollectCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
