// Package logging assembles the structured slog loggers used by streamwatch.
//
// It owns the console and JSON handlers, the per-run log file with its
// "current" symlink and retention pruning, and a Switch that lets a running
// watcher turn file and console logging on or off and change the level when
// its configuration is reloaded. Every record written through a run logger
// carries the run_id of the process that produced it.
//
// Components should derive their logger with NewComponentLogger and use the
// Field constants so console and JSON output share the same keys.
package logging
