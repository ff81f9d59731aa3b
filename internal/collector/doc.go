// Package collector gathers facts about the local machine.
//
// Every collector is a pipeline.Step that fills exactly one section of
// model.SystemInfo: OSCollector, HardwareCollector, GPUCollector,
// PythonCollector, NetworkCollector and PingCollector. CollectAll wires
// them into a pipeline and runs them.
//
// Design decision: Collection is best-effort. A missing tool, a failing
// command or unparsable output never aborts the run. The collector stores
// a placeholder (model.NotAvailable or an explanatory message) and logs
// the cause at debug level. Do only returns an error when the context is
// done.
//
// Collectors never touch the host directly. Commands go through
// shell.Runner and files through Env.ReadFile, so every parser can be
// exercised with canned output for any operating system.
package collector
