package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/llmctx/internal/display"
	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/report"
	"github.com/nao1215/llmctx/internal/workspace"
)

// Display languages accepted by --lang.
const (
	langEnglish = "en"
	langKorean  = "ko"
)

var (
	// errNoDocument is returned when data.json has not been written yet.
	errNoDocument = errors.New("data.json not found (run 'llmctx generate' or 'llmctx serve' first)")

	// errUnsupportedLang is returned for --lang values other than en and ko.
	errUnsupportedLang = errors.New("unsupported language (use en or ko)")

	// errKoreanNeedsJSON is returned when Korean keys are requested for a non-JSON format.
	errKoreanNeedsJSON = errors.New("--lang ko is only available with JSON output")
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved data.json",
		Long: `Show prints the document saved in data.json.

JSON output is identical to the file. With --lang ko the keys are
replaced by the Korean labels the form displays. Markdown and text
render a summary that is easier to read or paste into a chat.

Examples:
  # Print data.json
  llmctx show

  # Print with Korean keys
  llmctx show --lang ko

  # Print a Markdown summary
  llmctx show --markdown`,
		Args: cobra.NoArgs,
		RunE: runShowCmd,
	}

	cmd.Flags().StringP("lang", "l", langEnglish, "Key language for JSON output: en or ko")
	cmd.Flags().String("format", report.FormatJSON, "Output format: json, markdown or text")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (shorthand for --format markdown)")
	cmd.Flags().StringP("output", "o", "", "Write output to specified file path")

	return cmd
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	lang, err := cmd.Flags().GetString("lang")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	// show only reads data.json: no collector and no history.
	ws := workspace.New(cfg.DataFile(), nil, workspace.WithLogger(logger))
	doc, err := ws.Latest()
	if err != nil {
		return err
	}

	out, closeOut, err := createOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	if err := writeDocument(out, doc, format, lang); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

// writeDocument renders doc in format with keys in lang.
func writeDocument(w io.Writer, doc *model.Document, format, lang string) error {
	if doc == nil {
		return errNoDocument
	}

	switch lang {
	case langEnglish, "":
	case langKorean:
		if format != report.FormatJSON && format != "" {
			return errKoreanNeedsJSON
		}
		data, err := report.MarshalDocument(doc)
		if err != nil {
			return err
		}
		ko, err := display.TranslateIndent(data, display.KoreanKeyMap(), "", report.DocumentIndent)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", ko)
		return err
	default:
		return fmt.Errorf("%w: %q", errUnsupportedLang, lang)
	}

	writer, err := report.NewWriter(format, w)
	if err != nil {
		return err
	}
	_, err = writer.Write(doc)
	return err
}
