// Package monitor runs the streamwatch poll loop.
//
// Each tick prunes stale icons, re-reads the channel list, queries every
// channel, reconciles the answers against the channels known to be live,
// and presents one notification per transition in list order. Ticks run one
// at a time on the caller's goroutine. The known-state table lives only in
// memory for the life of the process.
package monitor
