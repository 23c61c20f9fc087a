package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"streamwatch/internal/channels"
	"streamwatch/internal/twitch"
)

const apiProbeTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that path is a directory the watcher can
// create files in.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	probe, err := os.CreateTemp(path, ".preflight-*")
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not writable: %v)", path, err)}
	}
	probe.Close()
	_ = os.Remove(probe.Name())
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckChannelList parses the channel list and returns the names it holds.
// An empty list passes; the watcher simply has nothing to poll.
func CheckChannelList(path string) (Result, []string) {
	const name = "Channel list"

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, nil
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}, nil
	}
	defer file.Close()

	names, duplicates, err := channels.Parse(file)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}, nil
	}
	detail := fmt.Sprintf("%s (%d channel(s))", path, len(names))
	if len(duplicates) > 0 {
		detail = fmt.Sprintf("%s (%d channel(s), %d duplicate(s) ignored)", path, len(names), len(duplicates))
	}
	return Result{Name: name, Passed: true, Detail: detail}, names
}

// CheckAPI queries channel once. Offline and non-live answers count as
// reachable; rejected credentials and transport errors fail.
func CheckAPI(ctx context.Context, api StatusFetcher, channel string) Result {
	const name = "Status API"

	if channel == "" {
		return Result{Name: name, Detail: "no channel listed to probe with"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, apiProbeTimeout)
	defer cancel()

	_, err := api.Fetch(checkCtx, channel)
	var statusErr *twitch.StatusError
	switch {
	case err == nil:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%s is live)", channel)}
	case errors.Is(err, twitch.ErrOffline), errors.Is(err, twitch.ErrNotLive):
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%s is offline)", channel)}
	case errors.As(err, &statusErr) && (statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusBadRequest || statusErr.Code == http.StatusForbidden):
		return Result{Name: name, Detail: fmt.Sprintf("credentials rejected (HTTP %d); check api.client_id", statusErr.Code)}
	default:
		return Result{Name: name, Detail: err.Error()}
	}
}
