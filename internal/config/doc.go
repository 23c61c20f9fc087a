// Package config loads, normalizes, and validates streamwatch configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TWITCH_CLIENT_ID. Missing keys keep their defaults, so a file that only sets
// check_interval is valid.
//
// Store wraps a loaded Config as an immutable snapshot that the watcher
// re-reads every few polls; a failed reload leaves the previous snapshot in
// effect.
package config
