// Package main hosts the streamwatch CLI.
//
// `streamwatch run` starts the foreground watcher. The remaining commands are
// one-shot helpers around the same internal packages: querying channels by
// hand, inspecting the run lock, maintaining the icon cache, sending a test
// notification, and scaffolding or validating the config file.
package main
