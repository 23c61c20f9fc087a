// Package twitch queries the Kraken-style streams endpoint and turns its
// payload into a streams.Status.
//
// A request is made per channel with the configured Client-ID and optional
// OAuth token. Anything short of a well-formed live stream, including
// transport errors, reruns and missing fields, is reported as "not live" by
// Status and classified by Fetch for callers that need the reason.
package twitch
