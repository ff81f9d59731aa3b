// Package model defines the data structures shared by the collectors,
// the report writers, the web form and the history store.
//
// This package contains two groups of types:
//   - SystemInfo: facts collected from the local machine (OS, CPU, GPU,
//     network, Python environment)
//   - Document: the data.json document assembled from SystemInfo and the
//     user's Preferences
//
// Design decision: We keep the collected facts and the persisted document
// as separate types. SystemInfo is regenerated on every run, while
// Document is what the user saved and is overwritten on each submission.
// BuildDocument is the only place where the two meet.
//
// JSON field names follow the data.json layout consumed by LLM prompts,
// which mixes snake_case and camelCase keys; the tags are kept as-is so
// existing files keep loading.
package model
