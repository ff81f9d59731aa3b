package report

import (
	"fmt"
	"io"

	"github.com/nao1215/llmctx/internal/model"
)

// Format names accepted by NewWriter.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or HTTP
// responses with the same API.
type Writer interface {
	// Write outputs the saved document.
	// Returns the number of bytes written and any error encountered.
	Write(doc *model.Document) (int, error)

	// WriteSystemInfo outputs collected facts.
	// Callers are expected to mask network details beforehand when the
	// output leaves the machine.
	WriteSystemInfo(info *model.SystemInfo) (int, error)
}

// NewWriter returns the writer for format.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatJSON, "":
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	case FormatText:
		return NewTextWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the document to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(doc *model.Document) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(doc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSystemInfo outputs the facts to all configured Writers.
func (m *MultiWriter) WriteSystemInfo(info *model.SystemInfo) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSystemInfo(info)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
