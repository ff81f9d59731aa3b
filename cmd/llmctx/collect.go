package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/redact"
	"github.com/nao1215/llmctx/internal/report"
)

// errConflictingFormats is returned when --markdown contradicts --format.
var errConflictingFormats = errors.New("--markdown cannot be combined with a different --format")

// NewCollectCmd creates the collect command.
func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect system facts and print them",
		Long: `Collect gathers facts about this machine and prints them as JSON.

It runs the same collectors the form uses:
- OS type, version and CPU architecture
- CPU model and installed memory
- NVIDIA GPUs and CUDA versions (nvidia-smi, nvcc)
- Python version, executable, virtualenv flag and pip freeze
- Network interfaces (ipconfig /all or ip addr)
- A ping connectivity check

A command that is missing or fails leaves "N/A" or its error message in
the output; collect itself does not fail.

Examples:
  # Print facts as JSON
  llmctx collect

  # Write a Markdown summary to a file
  llmctx collect --markdown -o facts.md

  # Hide IP and MAC addresses from the network listing
  llmctx collect --mask-network`,
		Args: cobra.NoArgs,
		RunE: runCollectCmd,
	}

	cmd.Flags().String("format", report.FormatJSON,
		"Output format: json, markdown or text")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (shorthand for --format markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	cmd.Flags().Bool("mask-network", false,
		"Mask IP and MAC addresses in the network listing")

	return cmd
}

// runCollectCmd executes the collect command.
func runCollectCmd(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	mask, err := cmd.Flags().GetBool("mask-network")
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, cancel := signalContext()
	defer cancel()

	info, err := newCollectFunc(cfg, logger)(ctx)
	if err != nil {
		return err
	}

	out, closeOut, err := createOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	if err := writeSystemInfo(out, info, format, mask); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

// outputFormat resolves --format and its --markdown shorthand.
func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	markdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return "", err
	}
	if !markdown {
		return format, nil
	}
	if cmd.Flags().Changed("format") && format != report.FormatMarkdown && format != "md" {
		return "", errConflictingFormats
	}
	return report.FormatMarkdown, nil
}

// writeSystemInfo renders info in format, masking the network listing first when asked.
func writeSystemInfo(w io.Writer, info *model.SystemInfo, format string, mask bool) error {
	writer, err := report.NewWriter(format, w)
	if err != nil {
		return err
	}
	if mask {
		masked := *info
		masked.NetworkDetails = redact.MaskNetworkDetails(info.NetworkDetails)
		info = &masked
	}
	if _, err := writer.WriteSystemInfo(info); err != nil {
		return fmt.Errorf("failed to write system info: %w", err)
	}
	return nil
}
