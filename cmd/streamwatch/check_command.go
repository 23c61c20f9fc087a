package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"streamwatch/internal/channels"
	"streamwatch/internal/logging"
	"streamwatch/internal/twitch"
)

type checkResult struct {
	channel  string
	state    string
	name     string
	activity string
	title    string
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [channel...]",
		Short: "Query channels once and print their status",
		Long:  "Query the given channels, or every channel in the channel list when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names, err = channels.NewSource(cfg.Paths.ChannelsFile, logging.NewNop()).Read()
				if err != nil {
					return fmt.Errorf("read channel list: %w", err)
				}
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintf(out, "No channels listed in %s\n", cfg.Paths.ChannelsFile)
				return nil
			}

			client := twitch.NewClient(cfg.API, logging.NewNop())
			stop := startProgress(cmd.ErrOrStderr(), fmt.Sprintf("Checking %d channel(s)", len(names)))
			results := make([]checkResult, 0, len(names))
			for _, name := range names {
				if err := cmd.Context().Err(); err != nil {
					stop()
					return err
				}
				results = append(results, checkChannel(cmd.Context(), client, name))
			}
			stop()

			rows := make([][]string, 0, len(results))
			live := 0
			for _, r := range results {
				if r.state == "live" {
					live++
				}
				rows = append(rows, []string{r.channel, r.state, r.name, r.activity, r.title})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "Channel"},
				{header: "State"},
				{header: "Name"},
				{header: "Activity", maxWidth: 30},
				{header: "Title", maxWidth: 50},
			}, rows))
			fmt.Fprintf(out, "%d of %d live\n", live, len(results))
			return nil
		},
	}
}

func checkChannel(ctx context.Context, client *twitch.Client, name string) checkResult {
	result := checkResult{channel: strings.TrimSpace(name)}
	status, err := client.Fetch(ctx, name)
	switch {
	case err == nil:
		result.state = "live"
		result.name = status.Name()
		result.activity = status.Activity
		result.title = status.Title
	case errors.Is(err, twitch.ErrOffline):
		result.state = "offline"
	case errors.Is(err, twitch.ErrNotLive):
		result.state = "not live"
	case errors.Is(err, twitch.ErrMalformed):
		result.state = "malformed"
		result.title = err.Error()
	default:
		result.state = "error"
		result.title = err.Error()
	}
	return result
}
