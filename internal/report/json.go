package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/llmctx/internal/model"
)

// DocumentIndent is the indentation of data.json.
const DocumentIndent = "    "

// JSONWriter outputs documents in JSON format.
//
// Design decision: We use standard encoding/json with HTML escaping
// turned off. Network listings and pip output contain '<' and '>' and
// Korean console text must stay readable, so both are written as is.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables the data.json layout, four spaces per level.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", DocumentIndent)
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the document in JSON format.
func (w *JSONWriter) Write(doc *model.Document) (int, error) {
	return w.writeJSON(doc)
}

// WriteSystemInfo outputs the facts in JSON format.
func (w *JSONWriter) WriteSystemInfo(info *model.SystemInfo) (int, error) {
	return w.writeJSON(info)
}

// writeJSON encodes v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	data, err := w.encode(v)
	if err != nil {
		return 0, err
	}
	return w.output.Write(data)
}

func (w *JSONWriter) encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	// Encode terminates the value with a newline.
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalDocument returns doc in the data.json layout.
func MarshalDocument(doc *model.Document) ([]byte, error) {
	return NewJSONWriter(io.Discard, WithPrettyPrint()).encode(doc)
}
