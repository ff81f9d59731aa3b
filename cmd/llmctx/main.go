// Package main provides the entry point for the llmctx CLI.
//
// llmctx collects facts about the local machine (OS, CPU, GPU, Python,
// network) and combines them with your development preferences into
// data.json, a document meant to be pasted into an LLM conversation so
// that generated code fits your environment.
//
// Usage:
//
//	llmctx collect
//	llmctx serve
//	llmctx generate --ide Cursor --shell zsh
//
// See --help for all available options.
package main

// main is the entry point for llmctx.
func main() {
	Execute()
}
