package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"streamwatch/internal/config"
	"streamwatch/internal/iconcache"
	"streamwatch/internal/logging"
)

func newIconsCommand(ctx *commandContext) *cobra.Command {
	iconsCmd := &cobra.Command{
		Use:   "icons",
		Short: "Inspect and clean the channel icon cache",
	}
	iconsCmd.AddCommand(newIconsListCommand(ctx))
	iconsCmd.AddCommand(newIconsPruneCommand(ctx))
	return iconsCmd
}

func iconCache(cfg *config.Config) *iconcache.Cache {
	return iconcache.New(cfg.Paths.IconsDir, cfg.Paths.DefaultIcon, cfg.APITimeout(), logging.NewNop())
}

func newIconsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached icons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := iconCache(cfg).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No cached icons in %s\n", cfg.Paths.IconsDir)
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Name,
					strconv.FormatInt(entry.Size, 10),
					entry.ModTime.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "File"},
				{header: "Bytes", align: alignRight},
				{header: "Modified"},
			}, rows))
			return nil
		},
	}
}

func newIconsPruneCommand(ctx *commandContext) *cobra.Command {
	var keep []string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete cached icons",
		Long:  "Delete every cached icon except those of channels named with --keep.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cache := iconCache(cfg)
			removed, err := cache.Prune(keep)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d icon(s) from %s\n", removed, cache.Dir())
			return err
		},
	}
	cmd.Flags().StringSliceVar(&keep, "keep", nil, "Channels whose icons are kept")
	return cmd
}
