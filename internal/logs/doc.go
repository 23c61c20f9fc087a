// Package logs reads the watcher's run log for `streamwatch logs`: the last
// N lines, then optionally every line appended afterwards. Following tracks
// the streamwatch.log link, so a watcher restart switches to the new run file.
package logs
