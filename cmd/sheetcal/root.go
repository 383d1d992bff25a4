package main

import (
	"github.com/spf13/cobra"

	appLog "sheetcal/internal/log"
)

const defaultConfigPath = "/etc/sheetcal/config.yaml"

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "sheetcal",
		Short:         "sheetcal computes calendar pages, selections and blackout dates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.logLevel != "" {
				appLog.SetLevel(appLog.ParseLevel(flags.logLevel))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", defaultConfigPath, "Path to config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, error); overrides the config file")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newPageCmd(flags))
	cmd.AddCommand(newJumpCmd(flags))
	cmd.AddCommand(newWeekCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
