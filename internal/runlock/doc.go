// Package runlock keeps a single streamwatch watcher running per host.
//
// The lock file holds the owner's pid as text. A record whose pid is no
// longer alive is treated as left over from a crash and reclaimed.
package runlock
