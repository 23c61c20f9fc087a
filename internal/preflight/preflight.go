package preflight

import (
	"context"
	"path/filepath"

	"streamwatch/internal/config"
	"streamwatch/internal/streams"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// StatusFetcher queries one channel. *twitch.Client satisfies it.
type StatusFetcher interface {
	Fetch(ctx context.Context, channel string) (streams.Status, error)
}

// RunAll executes the filesystem checks and, when api is non-nil, probes
// the status API with the first listed channel.
func RunAll(ctx context.Context, cfg *config.Config, api StatusFetcher) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Icons directory", cfg.Paths.IconsDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Lock directory", filepath.Dir(cfg.Paths.LockFile)),
	}

	list, names := CheckChannelList(cfg.Paths.ChannelsFile)
	results = append(results, list)

	if api != nil {
		probe := ""
		if len(names) > 0 {
			probe = names[0]
		}
		results = append(results, CheckAPI(ctx, api, probe))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
