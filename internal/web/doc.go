// Package web serves the local form that edits data.json.
//
// The form shows the detected system facts, the development preferences
// from the last saved document, and the saved document itself (with English
// keys as written to disk and with Korean display keys). Submitting the form
// rebuilds and overwrites data.json.
//
// Design decision: Rendering uses html/template with the templates embedded
// in the binary, so `llmctx serve` runs from any directory without extra
// files. The router is chi; every handler reads the shared state through a
// workspace.Workspace, which replaces the data file atomically.
package web
