package main

import (
	"github.com/spf13/cobra"

	"streamwatch/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the watcher in the foreground",
		Long: "Run the watcher until interrupted. Only one watcher runs per lock file;\n" +
			"a second invocation prints a message and exits successfully.",
		// The watcher starts on defaults when the file is broken and keeps retrying on reload.
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemonrun.Run(cmd.Context(), daemonrun.Options{
				ConfigPath: ctx.configPath(),
				LogLevel:   logLevel,
				Stdout:     cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for this run (debug, info, warn, error)")
	return cmd
}
