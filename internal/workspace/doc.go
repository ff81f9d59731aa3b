// Package workspace holds the state behind the context form.
//
// A Workspace owns the data.json path, the collected system facts and
// the last saved document. The web handlers and the generate command
// both go through it, so a document saved from either place is built the
// same way.
//
// Design decision: System facts are collected once and cached, because
// collection runs pip freeze and ping and takes seconds. Refresh
// re-collects on request. Concurrent first requests share one collection
// through singleflight.
package workspace
