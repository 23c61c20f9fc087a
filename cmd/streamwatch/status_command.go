package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"streamwatch/internal/config"
	"streamwatch/internal/logging"
	"streamwatch/internal/runlock"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a watcher is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, statusErr := runlock.New(cfg.Paths.LockFile).Status()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watcher: %s\n", describeLock(status, statusErr))
			fmt.Fprintf(out, "Lock file: %s\n", status.Path)
			fmt.Fprintf(out, "Channel list: %s\n", cfg.Paths.ChannelsFile)
			fmt.Fprintf(out, "Current log: %s\n", logging.CurrentLogPath(cfg.Paths.LogDir))
			fmt.Fprintf(out, "Desktop notifications: %s\n", yesNo(cfg.Notifications.Desktop))
			fmt.Fprintf(out, "ntfy: %s\n", yesNo(cfg.Notifications.NtfyTopic != ""))
			fmt.Fprintf(out, "Check interval: %s\n", cfg.Interval())
			printConfigSource(cmd, ctx)
			return nil
		},
	}
}

func describeLock(status runlock.Status, err error) string {
	switch {
	case err != nil:
		return fmt.Sprintf("unknown (%v)", err)
	case !status.Present:
		return "not running"
	case status.Alive:
		return fmt.Sprintf("running (pid %d)", status.PID)
	default:
		return fmt.Sprintf("not running (stale lock from pid %d; the next start reclaims it)", status.PID)
	}
}

func printConfigSource(cmd *cobra.Command, ctx *commandContext) {
	_, path, exists, err := config.Load(ctx.configPath())
	out := cmd.OutOrStdout()
	switch {
	case err != nil:
		fmt.Fprintf(out, "Config: %s (invalid: %v)\n", path, err)
	case exists:
		fmt.Fprintf(out, "Config: %s\n", path)
	default:
		fmt.Fprintf(out, "Config: %s (not found; defaults in use)\n", path)
	}
}
