// Package iconcache downloads channel logos, converts them to .ico files and
// keeps at most one per channel.
//
// Artifacts are immutable once written: a cached icon is never refreshed
// from upstream. Pruning removes artifacts for channels that are not live,
// along with any stray files in the directory.
package iconcache
