package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"streamwatch/internal/iconcache"
	"streamwatch/internal/logging"
	"streamwatch/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the configured sinks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.Notifications.Desktop && cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(out, "Notifications are disabled (notifications.desktop = false and no ntfy_topic)")
				return nil
			}
			if _, err := iconcache.EnsureDefaultIcon(cfg.Paths.DefaultIcon); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warn: default icon unavailable: %v\n", err)
			}
			svc := notifications.NewService(cfg.Notifications, logging.NewNop())
			if err := svc.Notify(cmd.Context(), notifications.Test(cfg.Paths.DefaultIcon, cfg.NotificationTimeout())); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
