// Package pipeline runs fact collectors against a shared SystemInfo.
//
// Each collector is a Step that fills one section of the SystemInfo. The
// Pipeline executes the steps either one after another or concurrently up
// to a limit, logs each step, and records which steps ran.
//
// Design decision: Steps own disjoint sections of SystemInfo, so running
// them concurrently needs no locking on the report itself. Only the list
// of performed steps is shared and it is guarded by the pipeline.
// Collection is best-effort: a step that cannot gather its fact stores a
// placeholder and returns nil. A returned error means something
// unexpected happened; by default the pipeline stops on it.
package pipeline
