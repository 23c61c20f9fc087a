// Package preflight checks that the environment a watcher needs is usable:
// writable directories, a readable channel list, and a status API that
// accepts the configured credentials. `streamwatch config validate` renders
// the results.
package preflight
