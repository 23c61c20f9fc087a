// Package daemonrun wires configuration, logging, the run lock, and the
// monitor into a single foreground watcher process.
package daemonrun
