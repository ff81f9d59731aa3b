// Package report renders documents and collected facts.
//
// This package contains writers for different output formats:
//   - JSONWriter: the data.json layout, also used for tool integration
//   - MarkdownWriter: a summary meant to be pasted into an LLM prompt
//   - TextWriter: plain text for terminal display
//
// Design decision: Report writing is kept apart from the data structures
// in the model package. New output formats can then be added without
// touching the model.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
