// Package streams holds the stream status model and the pure transition
// logic that decides which channels went live or changed activity.
package streams
